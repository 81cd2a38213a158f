package sessman

import "testing"

func TestLoadValue(t *testing.T) {
	page := `<script>var csrf = "a1b2"; var other = "x";</script>`
	v, ok := LoadValue(page, `csrf = "`)
	if !ok || v != "a1b2" {
		t.Fatalf("LoadValue = %q, %v", v, ok)
	}
	if _, ok := LoadValue(page, `missing = "`); ok {
		t.Fatal("found a missing value")
	}
	if _, ok := LoadValue(`token = "unterminated`, `token = "`); ok {
		t.Fatal("found an unterminated value")
	}
}

func TestLoadJSONObject(t *testing.T) {
	page := `<script>window.cfg = {"user": {"id": 7}, "note": "a } b"}; more()</script>`
	v, ok := LoadJSONObject(page, "window.cfg = {")
	if !ok {
		t.Fatal("object not found")
	}
	m := v.(map[string]any)
	if m["note"] != "a } b" || m["user"].(map[string]any)["id"].(float64) != 7 {
		t.Fatalf("unexpected object: %v", m)
	}

	arr, ok := LoadJSONObject(`items = [1, [2, 3]];`, "items = [")
	if !ok || len(arr.([]any)) != 2 {
		t.Fatalf("unexpected array: %v %v", arr, ok)
	}

	if _, ok := LoadJSONObject(page, "window.cfg = "); ok {
		t.Fatal("begin marker without bracket accepted")
	}
	if _, ok := LoadJSONObject(`x = {"a": 1`, "x = {"); ok {
		t.Fatal("unbalanced object accepted")
	}
}
