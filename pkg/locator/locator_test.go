package locator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocatable struct {
	loc Locator
	err error
}

func (f fakeLocatable) Locator() (Locator, error) { return f.loc, f.err }

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Locator
	}{
		{name: "css id", input: "#login", want: Locator{CSS, "#login"}},
		{name: "css class", input: ".btn-primary", want: Locator{CSS, ".btn-primary"}},
		{name: "absolute xpath", input: "//div[@id='x']", want: Locator{XPath, "//div[@id='x']"}},
		{name: "relative xpath", input: "./td[1]", want: Locator{XPath, "./td[1]"}},
		{name: "descendant xpath", input: ".//input", want: Locator{XPath, ".//input"}},
		{name: "parenthesized xpath", input: "(//tr)[2]", want: Locator{XPath, "(//tr)[2]"}},
		{name: "engine prefix", input: "text=Submit", want: Locator{Text, "Submit"}},
		{name: "quoted engine prefix", input: `text="Log in"`, want: Locator{Text, "Log in"}},
		{name: "xpath engine prefix", input: "xpath=//a", want: Locator{XPath, "//a"}},
		{name: "unknown prefix falls back to css", input: "data-foo=bar", want: Locator{CSS, "data-foo=bar"}},
		{name: "complex css", input: "div.container > input[name=\"q\"]", want: Locator{CSS, "div.container > input[name=\"q\"]"}},
		{name: "map", input: map[string]string{"role": "button"}, want: Locator{Role, "button"}},
		{name: "array tuple", input: [2]string{"id", "main"}, want: Locator{ID, "main"}},
		{name: "slice tuple", input: []string{"xpath", "//p"}, want: Locator{XPath, "//p"}},
		{name: "locator", input: Locator{CSS, "p"}, want: Locator{CSS, "p"}},
		{name: "locatable", input: fakeLocatable{loc: Locator{ID, "x"}}, want: Locator{ID, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantErr error
		message string
	}{
		{name: "int", input: 42, wantErr: ErrUnresolvable, message: "42 (int)"},
		{name: "empty string", input: "", wantErr: ErrUnresolvable},
		{name: "unknown engine in map", input: map[string]string{"jquery": "$x"}, wantErr: ErrUnsupportedEngine},
		{name: "map with two engines", input: map[string]string{"css": "a", "xpath": "//a"}, wantErr: ErrUnresolvable},
		{name: "short tuple", input: []string{"css"}, wantErr: ErrUnresolvable},
		{name: "unknown engine in tuple", input: [2]string{"sizzle", "a"}, wantErr: ErrUnsupportedEngine},
		{name: "locatable with empty locator", input: fakeLocatable{}, wantErr: ErrUnresolvable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestResolvePropagatesLocatableError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Resolve(fakeLocatable{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestString(t *testing.T) {
	assert.Equal(t, "#a", Locator{CSS, "#a"}.String())
	assert.Equal(t, "xpath=//a", Locator{XPath, "//a"}.String())
	assert.Equal(t, `text="Log in"`, Locator{Text, "Log in"}.String())
	assert.Equal(t, `role="button"`, Locator{Role, "button"}.String())
	assert.Equal(t, `id="say \"hi\""`, Locator{ID, `say "hi"`}.String())
}

func TestQuoteXPath(t *testing.T) {
	assert.Equal(t, "'abc'", QuoteXPath("abc"))
	assert.Equal(t, `"it's"`, QuoteXPath("it's"))
	assert.Equal(t, `concat('say "it', "'", 's"')`, QuoteXPath(`say "it's"`))
}

func TestXPathTranslation(t *testing.T) {
	x, ok := Locator{ID, "main"}.XPath()
	require.True(t, ok)
	assert.Equal(t, ".//*[@id='main']", x)

	_, ok = Locator{CSS, "div"}.XPath()
	assert.False(t, ok)
}
