package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/commands"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func tagDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "food.yaml", `
name: food
conditions:
  description.lower:
    contains: bakery
`)
	writeFile(t, dir, "daily.yaml", `
name: daily
conditions:
  - tags:
      contains: food
  - description:
      equal: kiosk
`)
	return dir
}

const recordsJSON = `[
  {"id": 1, "datetime": "2021-01-04 08:00:00", "amount": -4.5, "currency": "EUR", "amount_cur": -4.5, "description": "Bakery"},
  {"id": 2, "datetime": "2021-01-05 12:00:00", "amount": -20, "currency": "USD", "amount_cur": -24, "description": "kiosk"},
  {"id": 3, "datetime": "2021-02-01 09:00:00", "amount": -900, "currency": "EUR", "amount_cur": -900, "description": "rent", "tags": ["home"]}
]`

func TestTagsCheck_PrintsOrder(t *testing.T) {
	out, err := run(t, "tags", "check", tagDir(t))
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 tags\nfood\ndaily (after: food)\n", out)
}

func TestTagsCheck_WithRecords(t *testing.T) {
	records := writeFile(t, t.TempDir(), "records.json", recordsJSON)

	out, err := run(t, "tags", "check", tagDir(t), "--records", records)
	require.NoError(t, err)
	assert.Contains(t, out, "food: 1 of 3\n")
	assert.Contains(t, out, "daily: 2 of 3\n")
}

func TestTagsCheck_ReportsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\nconditions: {tags: {contains: b}}\n")
	writeFile(t, dir, "b.yaml", "name: b\nconditions: {tags: {contains: a}}\n")

	_, err := run(t, "tags", "check", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestReport_GroupsTaggedRecords(t *testing.T) {
	records := writeFile(t, t.TempDir(), "records.json", recordsJSON)

	out, err := run(t, "report", "--records", records, "--tags", tagDir(t), "--group", "tags:daily", "--agg", "amount=sum")
	require.NoError(t, err)

	var resp struct {
		Grouping string `json:"grouping"`
		Count    int    `json:"count"`
		Rows     []struct {
			ID       string   `json:"id"`
			Amount   string   `json:"amount"`
			Currency string   `json:"currency"`
			Tags     []string `json:"tags"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 2, resp.Count)

	assert.Equal(t, "1", resp.Rows[0].ID)
	assert.Equal(t, "-24.5", resp.Rows[0].Amount)
	assert.Equal(t, "EUR:1,USD:1", resp.Rows[0].Currency)
	assert.Equal(t, []string{"daily", "food"}, resp.Rows[0].Tags)

	assert.Equal(t, "-900", resp.Rows[1].Amount)
	assert.Equal(t, []string{"home"}, resp.Rows[1].Tags)
}

func TestReport_FilterAndRangeFromYAML(t *testing.T) {
	records := writeFile(t, t.TempDir(), "records.yaml", `
- id: 1
  datetime: "2021-01-04 08:00:00"
  amount: -4.5
  currency: EUR
  amount_cur: -4.5
  description: Bakery
- id: 2
  datetime: "2021-02-04 08:00:00"
  amount: -3
  currency: EUR
  amount_cur: -3
  description: bakery again
`)

	out, err := run(t, "report", "--records", records, "--tags", tagDir(t),
		"--filter", "food", "--from", "2021-02-01", "--group", "year")
	require.NoError(t, err)

	var resp struct {
		Count int `json:"count"`
		Rows  []struct {
			Amount string `json:"amount"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "-3", resp.Rows[0].Amount)
}

func TestReport_RejectsInvalidRecords(t *testing.T) {
	records := writeFile(t, t.TempDir(), "records.json", `[{"id": 1, "amount": 3}]`)

	_, err := run(t, "report", "--records", records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required field is missing")
}

func TestReport_RequiresRecords(t *testing.T) {
	_, err := run(t, "report")
	require.Error(t, err)
}
