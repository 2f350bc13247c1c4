package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookups(t *testing.T) {
	c, err := NewEnglish()
	require.NoError(t, err)

	assert.Equal(t, "Social flow", c.T("blocktitle"))
	assert.Equal(t, "2 weeks", c.T("window_14"))
	assert.Equal(t, "missing_key", c.T("missing_key"))
}

func TestCatalogModuleName(t *testing.T) {
	c := MustEnglish()

	assert.Equal(t, "Assignment", c.ModuleName("assign"))
	assert.Equal(t, "Customcert", c.ModuleName("customcert"))
	assert.Equal(t, "", c.ModuleName(""))
}

func TestNilCatalogReturnsKeys(t *testing.T) {
	var c *Catalog
	assert.Equal(t, "done", c.T("done"))
}

func TestDateFormatting(t *testing.T) {
	ts := time.Date(2024, time.March, 4, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Mon 04 March 09:05", ShortDate(ts))
	assert.Equal(t, "Monday 04 March 2024 09:05", LongDate(ts))
}
