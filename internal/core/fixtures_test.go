package core

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// adSchema mirrors the production ad campaign schema.
func adSchema() *Schema {
	return MustSchema(
		FieldSpec{Name: "Provider Name", Type: FieldText},
		FieldSpec{Name: "CampaignID", Type: FieldText},
		FieldSpec{Name: "Cost Per Ad Click", Type: FieldDecimal},
		FieldSpec{Name: "Redirect Link", Type: FieldText},
		FieldSpec{Name: "Phone Number", Type: FieldText, Nullable: true},
		FieldSpec{Name: "Address", Type: FieldText},
		FieldSpec{Name: "Zipcode", Type: FieldText},
	)
}

// homeCSV has 5 rows; WeProtect (line 4) is missing its CampaignID and
// HomesOnly (line 5) its Phone Number. It carries an extra column.
const homeCSV = `Provider Name,CampaignID,Cost Per Ad Click,Redirect Link,Phone Number,Address,Zipcode,Test Column
Home R Us,HOME1,5,homerus.com,1234567,123 A Street,12345,test
HomeGuard,HOME2,"15",homeguard.net,1234567,234 B Street,12343,test
WeProtect,,32,weprotect.com,1234567,354 D Street,54321,test
HomesOnly,HOME4,3,homesonly.com,,789 E Street,12345,test
Homes4U,HOME5,5,homes4u.net,1234567,345 C Street,12354,test
`

// autoCSV has 5 complete rows, two extra columns and a shuffled column order.
const autoCSV = `Account Id,CampaignID,Provider Name,Cost Per Ad Click,Redirect Link,Phone Number,Address,Zipcode,Test Column
2,AUTO1,Car R Us,5,carrus.com,1234567,123 A Street,12345,test
1,AUTO2,AutoGuard,15,autoguard.net,1234567,234 B Street,12343,test
3,AUTO3,WeProtect,32,weprotect.com,1234567,354 D Street,54321,test
4,AUTO4,CarsOnly,3,carsonly.com,1125189,789 E Street,12345,test
5,AUTO5,Cars4U,5,cars4u.net,1234567,345 C Street,12354,test
`

// noCampaignCSV is missing a required value on every row.
const noCampaignCSV = `Provider Name,CampaignID,Cost Per Ad Click,Redirect Link,Phone Number,Address,Zipcode
Lifers,,1.5,lifers.com,5550100,1 Main St,11111
LifeGuard,,2.5,lifeguard.com,5550101,2 Main St,22222
`

// pngBytes is the start of a PNG file; it is not valid UTF-8.
const pngBytes = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

// mapSource serves files from memory.
type mapSource map[string]string

func (m mapSource) Open(name string) (io.ReadCloser, error) {
	s, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

// mustRead parses CSV text into a table or fails the test.
func mustRead(t *testing.T, name, data string) *Table {
	t.Helper()
	tbl, err := ReadTable(name, strings.NewReader(data), 0)
	if err != nil {
		t.Fatalf("ReadTable(%s) error = %v", name, err)
	}
	return tbl
}

// writeFiles creates files in a fresh temp dir and returns its path.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// column returns the string form of every value in a column.
func column(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	pos := tbl.ColumnIndex(name)
	if pos < 0 {
		t.Fatalf("column %q not found in %v", name, tbl.Columns)
	}
	out := make([]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		out[i] = row.Values[pos].String()
	}
	return out
}
