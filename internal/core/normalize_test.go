package core

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestNormalizeTable_DropsRowsMissingRequired(t *testing.T) {
	n := NewNormalizer(adSchema())

	out, err := n.NormalizeTable(mustRead(t, "home.csv", homeCSV))
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}

	if out.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", out.Len())
	}
	if got := column(t, out, "Provider Name"); slices.Contains(got, "WeProtect") {
		t.Errorf("providers = %v, WeProtect should be dropped", got)
	}
	for i, row := range out.Rows {
		if v := row.Values[out.ColumnIndex("CampaignID")]; v.IsMissing() || v.String() == "" {
			t.Errorf("row %d CampaignID = %#v, want a value", i, v)
		}
	}
	if got := Lines(out.Rows); !slices.Equal(got, []int{2, 3, 5, 6}) {
		t.Errorf("lines = %v, want [2 3 5 6]", got)
	}
}

func TestNormalizeTable_FillsNullable(t *testing.T) {
	n := NewNormalizer(adSchema())
	input := strings.Replace(homeCSV, "WeProtect,,32", "WeProtect,HOME3,32", 1)

	out, err := n.NormalizeTable(mustRead(t, "home.csv", input))
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}

	if out.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", out.Len())
	}
	phone := out.Cell(3, "Phone Number")
	if phone != TextValue("") {
		t.Errorf("HomesOnly phone = %#v, want empty text", phone)
	}
	if got := out.Cell(3, "Provider Name").String(); got != "HomesOnly" {
		t.Errorf("row 3 provider = %q, want HomesOnly", got)
	}
}

func TestNormalizeTable_ProjectsAndCoerces(t *testing.T) {
	schema := adSchema()
	n := NewNormalizer(schema)

	out, err := n.NormalizeTable(mustRead(t, "auto.csv", autoCSV))
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}

	if !slices.Equal(out.Columns, schema.Columns()) {
		t.Errorf("Columns = %v, want %v", out.Columns, schema.Columns())
	}
	if out.Source != "auto.csv" {
		t.Errorf("Source = %q, want auto.csv", out.Source)
	}

	first := out.Rows[0].Values
	want := []Value{
		TextValue("Car R Us"),
		TextValue("AUTO1"),
		DecimalValue(5),
		TextValue("carrus.com"),
		TextValue("1234567"),
		TextValue("123 A Street"),
		TextValue("12345"),
	}
	if !slices.Equal(first, want) {
		t.Errorf("first row = %#v, want %#v", first, want)
	}

	for i, row := range out.Rows {
		if len(row.Values) != schema.Len() {
			t.Fatalf("row %d has %d values, want %d", i, len(row.Values), schema.Len())
		}
		for j, f := range schema.Fields() {
			v := row.Values[j]
			switch f.Type {
			case FieldDecimal:
				if v.Kind != KindDecimal {
					t.Errorf("row %d %s kind = %v, want decimal", i, f.Name, v.Kind)
				}
			case FieldText:
				if v.Kind != KindText {
					t.Errorf("row %d %s kind = %v, want text", i, f.Name, v.Kind)
				}
			}
		}
	}

	if got := column(t, out, "Cost Per Ad Click"); !slices.Equal(got, []string{"5.0", "15.0", "32.0", "3.0", "5.0"}) {
		t.Errorf("costs = %v", got)
	}
}

func TestNormalizeTable_StripsQuotesFromRequired(t *testing.T) {
	schema := adSchema()
	tbl := &Table{
		Source:  "quotes.csv",
		Columns: schema.Columns(),
		Rows: []Row{{
			Source: "quotes.csv",
			Line:   2,
			Values: []Value{
				TextValue(`Home "R" Us`),
				TextValue(`HOME1"`),
				TextValue(`"5"`),
				TextValue("homerus.com"),
				TextValue(`"555"`),
				TextValue("123 A Street"),
				TextValue(`""`),
			},
		}},
	}

	out, err := NewNormalizer(schema).NormalizeTable(tbl)
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}

	want := []Value{
		TextValue("Home R Us"),
		TextValue("HOME1"),
		DecimalValue(5),
		TextValue("homerus.com"),
		TextValue(`"555"`), // nullable columns keep their quotes
		TextValue("123 A Street"),
		TextValue(""),
	}
	if got := out.Rows[0].Values; !slices.Equal(got, want) {
		t.Errorf("row = %#v, want %#v", got, want)
	}
}

func TestNormalizeTable_AbsentNullableColumn(t *testing.T) {
	input := "Provider Name,CampaignID,Cost Per Ad Click,Redirect Link,Address,Zipcode\n" +
		"Home R Us,HOME1,5,homerus.com,123 A Street,12345\n"

	out, err := NewNormalizer(adSchema()).NormalizeTable(mustRead(t, "nophone.csv", input))
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", out.Len())
	}
	if v := out.Cell(0, "Phone Number"); v != TextValue("") {
		t.Errorf("phone = %#v, want empty text", v)
	}
}

func TestNormalizeTable_ZeroRows(t *testing.T) {
	out, err := NewNormalizer(adSchema()).NormalizeTable(mustRead(t, "nocampaign.csv", noCampaignCSV))
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Len() = %d, want 0", out.Len())
	}
	if !slices.Equal(out.Columns, adSchema().Columns()) {
		t.Errorf("Columns = %v, want schema columns", out.Columns)
	}
}

func TestNormalizeTable_CoercionFailure(t *testing.T) {
	input := strings.Replace(autoCSV, "AUTO3,WeProtect,32", "AUTO3,WeProtect,free", 1)

	_, err := NewNormalizer(adSchema()).NormalizeTable(mustRead(t, "auto.csv", input))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Field != "Cost Per Ad Click" || verr.Value != "free" || verr.Line != 4 {
		t.Errorf("ValidationError = %+v", verr)
	}
	if !strings.HasPrefix(verr.Error(), "line 4: Cost Per Ad Click:") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestNormalizeTable_Idempotent(t *testing.T) {
	n := NewNormalizer(adSchema())

	for name, input := range map[string]string{"home.csv": homeCSV, "auto.csv": autoCSV} {
		once, err := n.NormalizeTable(mustRead(t, name, input))
		if err != nil {
			t.Fatalf("%s: first pass error = %v", name, err)
		}
		twice, err := n.NormalizeTable(once)
		if err != nil {
			t.Fatalf("%s: second pass error = %v", name, err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("%s: normalizing twice changed the table:\n%+v\n%+v", name, once, twice)
		}
	}
}

func TestNormalizeTable_DoesNotModifyInput(t *testing.T) {
	tbl := mustRead(t, "home.csv", homeCSV)
	before := mustRead(t, "home.csv", homeCSV)

	if _, err := NewNormalizer(adSchema()).NormalizeTable(tbl); err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}
	if !reflect.DeepEqual(tbl, before) {
		t.Error("input table was modified")
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	bad := strings.Replace(autoCSV, "AUTO3,WeProtect,32", "AUTO3,WeProtect,free", 1)
	tables := []*Table{
		mustRead(t, "auto.csv", bad),
		mustRead(t, "home.csv", homeCSV),
	}

	out, diags := NewNormalizer(adSchema()).Normalize(context.Background(), tables)

	if len(out) != 1 || out[0].Source != "home.csv" {
		t.Fatalf("normalized = %d tables, want only home.csv", len(out))
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Source != "auto.csv" || d.Reason != ReasonCoercionFailed || d.Message.Code != "VAL002" {
		t.Errorf("diagnostic = %s %s %s", d.Source, d.Reason, d.Message.Code)
	}
	if got := Lines(d.Rows); !slices.Equal(got, []int{4}) {
		t.Errorf("offending lines = %v, want [4]", got)
	}
	if !strings.Contains(d.Detail, "free") {
		t.Errorf("Detail = %q, want the bad value", d.Detail)
	}
}
