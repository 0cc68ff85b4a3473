package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/sells-group/inspection-cli/internal/model"
)

func TestDefault(t *testing.T) {
	l := Default()
	assert.Equal(t, language.Finnish, l.Tag())
	assert.Equal(t, "Keskusta", l.Area(model.AreaCenter))
	assert.Equal(t, "Viikko", l.Header(HeaderWeek))
}

func TestZeroLocalizerIsFinnish(t *testing.T) {
	var l Localizer
	assert.Equal(t, "Muu", l.Area(model.AreaOther))
}

func TestParse(t *testing.T) {
	l, err := Parse("sv-FI")
	require.NoError(t, err)
	assert.Equal(t, language.Swedish, l.Tag())
	assert.Equal(t, "Centrum", l.Area(model.AreaCenter))

	l, err = Parse("en")
	require.NoError(t, err)
	assert.Equal(t, "Requirement (%)", l.Header(HeaderRequirement))

	_, err = Parse("not a tag!")
	require.Error(t, err)
}

func TestFromAcceptLanguage(t *testing.T) {
	fb := Default()
	assert.Equal(t, language.English, FromAcceptLanguage("en-GB,en;q=0.9", fb).Tag())
	assert.Equal(t, language.Swedish, FromAcceptLanguage("sv;q=0.8, de;q=0.9", fb).Tag())
	assert.Equal(t, language.Finnish, FromAcceptLanguage("", fb).Tag())
	assert.Equal(t, language.Finnish, FromAcceptLanguage("ja", fb).Tag())
}

func TestHeaderUnknownKey(t *testing.T) {
	assert.Equal(t, "bogus", Default().Header("bogus"))
}

func TestParseArea(t *testing.T) {
	for in, want := range map[string]model.Area{
		"CENTER":   model.AreaCenter,
		"keskusta": model.AreaCenter,
		"Övrigt":   model.AreaOther,
		"Other":    model.AreaOther,
	} {
		got, err := ParseArea(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseArea("suburb")
	require.Error(t, err)
}
