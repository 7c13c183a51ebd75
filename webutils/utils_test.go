package webutils

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorStatus(w, http.StatusNotFound, errors.New("bone 3 not found"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status %d; expected %d", w.Code, http.StatusNotFound)
	}
	var body struct{ Error string }
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "bone 3 not found" {
		t.Errorf("error %q; expected %q", body.Error, "bone 3 not found")
	}
}

func TestWriteJsonFile(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJsonFile(w, map[string]int{"bones": 2}, "leg")

	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "leg.json") {
		t.Errorf("Content-Disposition %q; expected leg.json", cd)
	}
	if !strings.Contains(w.Body.String(), `"bones": 2`) {
		t.Errorf("body %q", w.Body.String())
	}
}

func TestFloatParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?theta=0.5&bad=x", nil)

	tests := []struct {
		name     string
		expected float64
		fail     bool
	}{
		{"theta", 0.5, false},
		{"missing", 7, false},
		{"bad", 0, true},
	}
	for _, test := range tests {
		v, err := FloatParam(r, test.name, 7)
		if (err != nil) != test.fail || v != test.expected {
			t.Errorf("FloatParam(%q)=%v,%v; expected %v", test.name, v, err, test.expected)
		}
	}
	if !HasParam(r, "theta") || HasParam(r, "missing") {
		t.Errorf("HasParam mismatch")
	}
}

func TestReadFormFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("data", "leg.yaml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`{"bones": 2}`))
	mw.Close()

	r := httptest.NewRequest("POST", "/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := ReadFormFile(r, "data")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"bones": 2}` {
		t.Errorf("ReadFormFile=%q", data)
	}

	if _, err := ReadFormFile(httptest.NewRequest("GET", "/upload", nil), "data"); err == nil {
		t.Errorf("ReadFormFile on GET succeeded")
	}
}
