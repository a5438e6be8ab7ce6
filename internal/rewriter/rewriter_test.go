package rewriter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"printfmt/internal/model"
	"printfmt/internal/parser"
)

func newOptions(t *testing.T, dialect string, mutate ...func(*model.Options)) *model.Options {
	t.Helper()
	opts, err := model.NewOptions(dialect)
	if err != nil {
		t.Fatalf("NewOptions returned error: %v", err)
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	if err := opts.Compile(); err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	return &opts
}

func dropSource(o *model.Options) { o.KeepSource = false }

func convertText(t *testing.T, opts *model.Options, text string) model.Result {
	t.Helper()
	return Convert(model.Statement{Line: 1, EndLine: 1, Text: text}, opts)
}

func TestConvertValueScenario(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout)
	stmt := model.Statement{Line: 7, EndLine: 7, Text: `printout(INFO,"Mgr","+++ Value = %d mm",x);`}

	args, err := Split(stmt, opts)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if args.Level != "INFO" || args.Source != `"Mgr"` || args.Format != `"+++ Value = %d mm"` {
		t.Fatalf("unexpected arguments: %#v", args)
	}
	if diff := cmp.Diff([]string{"x"}, args.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"+++ Value = ", " mm"}, Fragments(args.Format, opts)); diff != "" {
		t.Fatalf("fragments mismatch (-want +got):\n%s", diff)
	}

	res := Convert(stmt, opts)
	want := `LOG(INFO) << "Mgr" << ": " << "+++ Value = " << x << " mm";`
	if res.Rewritten != want {
		t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
	if res.Line != 7 || res.Original != stmt.Text {
		t.Fatalf("result lost statement context: %#v", res)
	}
}

func TestConvertDropSource(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout, dropSource)
	res := convertText(t, opts, `printout(INFO,"Mgr","+++ Value = %d mm",x);`)
	if want := `LOG(INFO) << "+++ Value = " << x << " mm";`; res.Rewritten != want {
		t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
}

func TestConvertMultiLineStatement(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout)
	src := strings.Join([]string{
		`  printout(INFO,"VolumeManager","+++ %s placed at level %d",`,
		`           name.c_str(),`,
		`           level);`,
	}, "\n")

	var results []model.Result
	err := parser.IterateStatements(strings.NewReader(src), opts, func(stmt model.Statement) error {
		results = append(results, Convert(stmt, opts))
		return nil
	})
	if err != nil {
		t.Fatalf("IterateStatements returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if want := `  printout(INFO,"VolumeManager","+++ %s placed at level %d",name.c_str(),level);`; res.Original != want {
		t.Fatalf("accumulated statement mismatch:\nwant %q\ngot  %q", want, res.Original)
	}
	want := `  LOG(INFO) << "VolumeManager" << ": " << "+++ " << name << " placed at level " << level;`
	if res.Rewritten != want {
		t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
	if res.Line != 1 || res.EndLine != 3 {
		t.Fatalf("unexpected line range: %d-%d", res.Line, res.EndLine)
	}
}

func TestConvertStripsSuffixFromValuesOnly(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout)
	res := convertText(t, opts, `printout(DEBUG,"Geo","call .c_str() on %s",vol.c_str());`)
	want := `LOG(DEBUG) << "Geo" << ": " << "call .c_str() on " << vol;`
	if res.Rewritten != want {
		t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
}

func TestConvertWithoutValues(t *testing.T) {
	cases := []struct {
		name  string
		opts  *model.Options
		input string
		head  string
		want  string
	}{
		{
			name:  "literal with source",
			opts:  newOptions(t, model.DialectPrintout),
			input: `printout(ERROR,"Geo","+++ Nothing to do.");`,
			head:  `LOG(ERROR) << "Geo" << ": " << `,
			want:  `LOG(ERROR) << "Geo" << ": " << "+++ Nothing to do.";`,
		},
		{
			name:  "literal without source",
			opts:  newOptions(t, model.DialectPrintout, dropSource),
			input: `printout(ERROR,"Geo","+++ Nothing to do.");`,
			head:  `LOG(ERROR) << `,
			want:  `LOG(ERROR) << "+++ Nothing to do.";`,
		},
		{
			name:  "expression format",
			opts:  newOptions(t, model.DialectPrintout, dropSource),
			input: `printout(INFO,"Geo",msg.c_str());`,
			head:  `LOG(INFO) << `,
			want:  `LOG(INFO) << msg;`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := convertText(t, tc.opts, tc.input)
			if res.Err != nil {
				t.Fatalf("Convert returned error: %v", res.Err)
			}
			if res.Rewritten != tc.want {
				t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", tc.want, res.Rewritten)
			}
			if rest := strings.TrimPrefix(res.Rewritten, tc.head); strings.Contains(rest, "<<") {
				t.Fatalf("unexpected append operator after head: %q", rest)
			}
		})
	}
}

func TestRewriteNoSpecifiersNoValues(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout)
	got, fragments := Rewrite(`"plain text"`, nil, opts)
	if got != `"plain text";` {
		t.Fatalf("unexpected rewrite: %q", got)
	}
	if fragments != 1 {
		t.Fatalf("expected a single fragment, got %d", fragments)
	}
	if strings.Contains(got, "<<") {
		t.Fatalf("append operator in literal-only rewrite: %q", got)
	}
}

func TestConvertSpecifierAtEdges(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`printout(INFO,"X","%d items",n);`, `LOG(INFO) << n << " items";`},
		{`printout(INFO,"X","items: %d",n);`, `LOG(INFO) << "items: " << n;`},
		{`printout(INFO,"X","%s%s",a,b);`, `LOG(INFO) << a << b;`},
		{`printout(INFO,"X","%s",a);`, `LOG(INFO) << a;`},
	}
	opts := newOptions(t, model.DialectPrintout, dropSource)
	for _, tc := range cases {
		res := convertText(t, opts, tc.input)
		if res.Rewritten != tc.want {
			t.Fatalf("Convert(%q):\nwant %q\ngot  %q", tc.input, tc.want, res.Rewritten)
		}
		if strings.Contains(res.Rewritten, `""`) {
			t.Fatalf("empty literal debris in %q", res.Rewritten)
		}
	}

	withSource := newOptions(t, model.DialectPrintout)
	res := convertText(t, withSource, `printout(INFO,"X","%d items",n);`)
	if want := `LOG(INFO) << "X" << ": " << n << " items";`; res.Rewritten != want {
		t.Fatalf("rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
}

func TestConvertBalancedCounts(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout, dropSource)
	for k := 0; k <= 5; k++ {
		format := "f0"
		values := make([]string, 0, k)
		for i := 0; i < k; i++ {
			format += fmt.Sprintf(" %%d f%d", i+1)
			values = append(values, fmt.Sprintf("v%d", i))
		}
		args := append([]string{"INFO", `"X"`, `"` + format + `"`}, values...)
		res := convertText(t, opts, "printout("+strings.Join(args, ",")+");")

		if got := len(Fragments(`"`+format+`"`, opts)); got != k+1 {
			t.Fatalf("k=%d: expected %d fragments, got %d", k, k+1, got)
		}
		body := strings.TrimPrefix(res.Rewritten, "LOG(INFO) << ")
		if got := strings.Count(body, `"`) / 2; got != k+1 {
			t.Fatalf("k=%d: expected %d literals in %q, got %d", k, k+1, res.Rewritten, got)
		}
		if got := strings.Count(body, "<<"); got != 2*k {
			t.Fatalf("k=%d: expected %d appends in %q, got %d", k, 2*k, res.Rewritten, got)
		}
		for _, v := range values {
			if !strings.Contains(body, " "+v+" ") && !strings.HasSuffix(body, " "+v+";") {
				t.Fatalf("k=%d: value %s missing from %q", k, v, res.Rewritten)
			}
		}
		if strings.Contains(res.Rewritten, `""`) || len(res.Warnings) != 0 {
			t.Fatalf("k=%d: unexpected debris or warnings: %q %v", k, res.Rewritten, res.Warnings)
		}
	}
}

func TestCleanupIdempotent(t *testing.T) {
	inputs := []string{
		`LOG(INFO) << "" << a << "" << b << "";`,
		`LOG(INFO) << "" << "" << a;`,
		`"" << x << "" << "";`,
		`LOG(INFO) << "kept" << x;`,
	}
	for _, in := range inputs {
		once := Cleanup(in, ";")
		twice := Cleanup(once, ";")
		if once != twice {
			t.Fatalf("Cleanup not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	if got := Cleanup(`LOG(INFO) << "" << "" << a;`, ";"); got != `LOG(INFO) << a;` {
		t.Fatalf("unexpected cleanup result: %q", got)
	}
}

func TestInterleave(t *testing.T) {
	cases := []struct {
		fragments []string
		values    []string
		want      []string
	}{
		{[]string{"a", "b"}, []string{"x"}, []string{"a", "x", "b"}},
		{[]string{"a"}, []string{"x", "y"}, []string{"a", "x", "y"}},
		{[]string{"a", "b", "c", "d"}, []string{"x"}, []string{"a", "x", "b", "c", "d"}},
		{nil, nil, []string{}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Interleave(tc.fragments, tc.values)); diff != "" {
			t.Fatalf("Interleave(%v, %v) mismatch (-want +got):\n%s", tc.fragments, tc.values, diff)
		}
	}
}

func TestConvertUnbalanced(t *testing.T) {
	input := `printout(INFO,"X","%d %d %d",a);`

	res := convertText(t, newOptions(t, model.DialectPrintout, dropSource), input)
	if res.Err != nil {
		t.Fatalf("lenient mode should not fail: %v", res.Err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "4 literal fragments for 1 values") {
		t.Fatalf("expected unbalanced warning, got %v", res.Warnings)
	}
	if want := `LOG(INFO) << a << " " << " ";`; res.Rewritten != want {
		t.Fatalf("best-effort rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}

	strict := newOptions(t, model.DialectPrintout, func(o *model.Options) { o.Strict = true })
	res = convertText(t, strict, input)
	if !errors.Is(res.Err, model.ErrUnbalancedInterleave) {
		t.Fatalf("expected unbalanced error in strict mode, got %v", res.Err)
	}
	if res.Rewritten != "" || res.OK() {
		t.Fatalf("strict failure should leave no rewrite: %q", res.Rewritten)
	}

	noValues := `printout(INFO,"M","a %d b %d c %s");`
	res = convertText(t, newOptions(t, model.DialectPrintout), noValues)
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "4 literal fragments for 0 values") {
		t.Fatalf("expected unbalanced warning without values, got %v", res.Warnings)
	}
	if want := `LOG(INFO) << "M" << ": " << "a %d b %d c %s";`; res.Rewritten != want {
		t.Fatalf("best-effort rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}

	res = convertText(t, strict, noValues)
	if !errors.Is(res.Err, model.ErrUnbalancedInterleave) || res.Rewritten != "" {
		t.Fatalf("expected unbalanced error without values in strict mode, got %v %q", res.Err, res.Rewritten)
	}

	res = convertText(t, strict, `printout(INFO,"M","done");`)
	if res.Err != nil || len(res.Warnings) != 0 {
		t.Fatalf("literal without specifiers or values should be balanced: %v %v", res.Err, res.Warnings)
	}
}

func TestConvertMalformed(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout)
	for _, input := range []string{
		`printout(INFO,"X");`,
		`printout(INFO);`,
		`printout(INFO,"X",);`,
		`// printout(INFO,"M","old %d",x) was removedint y = f(a, b);`,
		`printout(INFO,"M","v %d",f(x);`,
	} {
		res := convertText(t, opts, input)
		if !errors.Is(res.Err, model.ErrMalformedArgumentList) {
			t.Fatalf("Convert(%q): expected malformed argument list, got %v", input, res.Err)
		}
		var malformed *model.MalformedArgumentListError
		if !errors.As(res.Err, &malformed) || malformed.Statement != input {
			t.Fatalf("Convert(%q): error lacks statement context: %#v", input, res.Err)
		}
	}
}

func TestConvertStrictTokenizer(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout, dropSource)
	cases := []struct {
		input string
		want  string
	}{
		{`printout(INFO,"X","a, b %d",f(x, y));`, `LOG(INFO) << "a, b " << f(x, y);`},
		{`printout(INFO,"X","first part " + "%d second",n);`, `LOG(INFO) << "first part " << n << " second";`},
		{`printout(INFO,"X","sum %d",a+b);`, `LOG(INFO) << "sum " << a+b;`},
		{`printout(INFO,"X","say \"%s\"",w);`, `LOG(INFO) << "say \"" << w << "\"";`},
		{`  if (dbg) dd4hep::printout(dd4hep::INFO,"X","v=%d",v);`, `  if (dbg) dd4hep::LOG(dd4hep::INFO) << "v=" << v;`},
	}
	for _, tc := range cases {
		res := convertText(t, opts, tc.input)
		if res.Rewritten != tc.want {
			t.Fatalf("Convert(%q):\nwant %q\ngot  %q", tc.input, tc.want, res.Rewritten)
		}
	}
}

func TestConvertNaiveMatchesReference(t *testing.T) {
	opts := newOptions(t, model.DialectPrintout, func(o *model.Options) {
		o.SplitMode = model.SplitNaive
	})
	res := convertText(t, opts, `printout(INFO,"Mgr","+++ Value = %d mm",x);`)
	if want := `LOG(INFO) << "Mgr" << ": " << "Value = " << x << " mm";`; res.Rewritten != want {
		t.Fatalf("naive rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}
}

func TestConvertPrintfDialect(t *testing.T) {
	opts := newOptions(t, model.DialectPrintf)
	res := convertText(t, opts, `    printf("%d apples\n", n);`)
	if want := `    std::cout << n << " apples\n";`; res.Rewritten != want {
		t.Fatalf("printf rewrite mismatch:\nwant %q\ngot  %q", want, res.Rewritten)
	}

	res = convertText(t, opts, `printf();`)
	if !errors.Is(res.Err, model.ErrMalformedArgumentList) {
		t.Fatalf("expected malformed error for empty printf, got %v", res.Err)
	}
}

func TestSplitTopLevel(t *testing.T) {
	got, ok := splitTopLevel(`INFO,"a,b",f(1,2),m[i,j],'\'',{1,2}`)
	if !ok {
		t.Fatalf("balanced input reported as unbalanced")
	}
	want := []string{`INFO`, `"a,b"`, `f(1,2)`, `m[i,j]`, `'\''`, `{1,2}`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("splitTopLevel mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitTopLevelUnbalanced(t *testing.T) {
	for _, input := range []string{
		`INFO,"M","old %d",x) was removedint y = f(a, b`,
		`INFO,"M",f(x`,
		`INFO,"M",x)`,
		`INFO,"M","open`,
		`INFO,'c`,
	} {
		if tokens, ok := splitTopLevel(input); ok {
			t.Fatalf("splitTopLevel(%q) accepted unbalanced input: %q", input, tokens)
		}
	}
}

func TestMergeLiterals(t *testing.T) {
	cases := map[string]string{
		`"a" "b"`:       `"ab"`,
		`"a" + "b %d"`:  `"ab %d"`,
		`"a \" q" "b"`:  `"a \" qb"`,
		`"a" + name`:    `"a" + name`,
		`fmt.c_str()`:   `fmt.c_str()`,
		`"unterminated`: `"unterminated`,
		`"single %s"`:   `"single %s"`,
	}
	for in, want := range cases {
		if got := mergeLiterals(in); got != want {
			t.Fatalf("mergeLiterals(%q) = %q, want %q", in, got, want)
		}
	}
}
