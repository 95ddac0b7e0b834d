package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/bitfantasy/partslib/internal/parts/testutil"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func setupLibraryTest(t *testing.T) (*gin.Engine, *testutil.TestEnv) {
	t.Helper()
	env := testutil.SetupEnv(t)
	router := testutil.SetupRouter()
	RegisterRoutes(router, NewHandlers(env.Services, env.Hub, env.Logger, 10<<20))
	return router, env
}

func createComponent(t *testing.T, router *gin.Engine, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/components", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func responseCode(t *testing.T, body map[string]interface{}) int {
	t.Helper()
	code, ok := body["code"].(float64)
	if !ok {
		t.Fatalf("response has no code: %v", body)
	}
	return int(code)
}

func TestComponentCreateAndGet(t *testing.T) {
	router, _ := setupLibraryTest(t)

	comp := createComponent(t, router, map[string]interface{}{
		"number":     "SCR-M3",
		"name":       "Screw M3",
		"quantity":   100,
		"unit_price": "0.10",
	})
	id := comp["id"].(string)
	if comp["revision"] != "1" {
		t.Errorf("Expected default revision '1', got %v", comp["revision"])
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/components/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["number"] != "SCR-M3" {
		t.Errorf("Expected number 'SCR-M3', got %v", data["number"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/components/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if code := responseCode(t, testutil.ParseResponse(w)); code != CodeNotFound {
		t.Errorf("Expected code %d, got %d", CodeNotFound, code)
	}
}

func TestComponentCreateValidation(t *testing.T) {
	router, _ := setupLibraryTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/components", map[string]interface{}{"name": "no number"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if code := responseCode(t, resp); code != CodeValidation {
		t.Errorf("Expected code %d, got %d", CodeValidation, code)
	}
	fields, ok := resp["data"].([]interface{})
	if !ok || len(fields) == 0 {
		t.Fatalf("Expected field errors, got %v", resp["data"])
	}
	if fields[0].(map[string]interface{})["field"] != "number" {
		t.Errorf("Expected error on 'number', got %v", fields[0])
	}
}

func TestComponentListExcludesArchived(t *testing.T) {
	router, _ := setupLibraryTest(t)
	a := createComponent(t, router, map[string]interface{}{"number": "A", "name": "A"})
	createComponent(t, router, map[string]interface{}{"number": "B", "name": "B"})

	w := testutil.DoRequest(router, "POST", "/api/v1/components/"+a["id"].(string)+"/archive", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/components", nil)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 1 {
		t.Errorf("Expected 1 active component, got %v", pagination["total"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/components?include_archived=true", nil)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	pagination = data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Errorf("Expected 2 components, got %v", pagination["total"])
	}
}

func TestHierarchyEndpoints(t *testing.T) {
	router, _ := setupLibraryTest(t)
	a := createComponent(t, router, map[string]interface{}{"number": "A", "name": "A"})["id"].(string)
	b := createComponent(t, router, map[string]interface{}{"number": "B", "name": "B"})["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/components/"+a+"/children", map[string]interface{}{
		"child_id": b,
		"quantity": 4,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name     string
		parent   string
		child    string
		wantHTTP int
		wantCode int
	}{
		{"duplicate", a, b, http.StatusConflict, CodeDuplicateEdge},
		{"cycle", b, a, http.StatusConflict, CodeCycle},
		{"self loop", a, a, http.StatusConflict, CodeCycle},
		{"unknown child", a, "nope", http.StatusNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoRequest(router, "POST", "/api/v1/components/"+tt.parent+"/children", map[string]interface{}{
				"child_id": tt.child,
			})
			if w.Code != tt.wantHTTP {
				t.Fatalf("Expected %d, got %d: %s", tt.wantHTTP, w.Code, w.Body.String())
			}
			if code := responseCode(t, testutil.ParseResponse(w)); code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, code)
			}
		})
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/components/"+a+"/tree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	tree := testutil.ParseResponse(w)["data"].(map[string]interface{})
	children := tree["children"].([]interface{})
	if len(children) != 1 || children[0].(map[string]interface{})["quantity"].(float64) != 4 {
		t.Errorf("Unexpected tree: %v", tree)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/components/"+a+"/children/"+b, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "DELETE", "/api/v1/components/"+a+"/children/"+b, nil)
	if code := responseCode(t, testutil.ParseResponse(w)); code != CodeEdgeNotFound {
		t.Errorf("Expected code %d, got %d", CodeEdgeNotFound, code)
	}
}

func TestComponentDeleteRequiresConfirmation(t *testing.T) {
	router, _ := setupLibraryTest(t)
	a := createComponent(t, router, map[string]interface{}{"number": "A", "name": "A"})["id"].(string)
	b := createComponent(t, router, map[string]interface{}{"number": "B", "name": "B"})["id"].(string)
	testutil.DoRequest(router, "POST", "/api/v1/components/"+a+"/children", map[string]interface{}{"child_id": b})

	w := testutil.DoRequest(router, "DELETE", "/api/v1/components/"+b, nil)
	if code := responseCode(t, testutil.ParseResponse(w)); code != CodeConfirmationRequired {
		t.Fatalf("Expected code %d, got %d", CodeConfirmationRequired, code)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/components/"+b+"?confirm=true", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if code := responseCode(t, testutil.ParseResponse(w)); code != CodeHasRelations {
		t.Errorf("Expected code %d, got %d", CodeHasRelations, code)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/components/"+b+"?confirm=true&policy=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown policy, got %d", w.Code)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/components/"+b+"?confirm=true&policy=detach", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLibraryValueAndClear(t *testing.T) {
	router, env := setupLibraryTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/library/seed", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/library/value", nil)
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total_value"] != "32.50" {
		t.Errorf("Expected total_value 32.50, got %v", data["total_value"])
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/library/clear", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without confirm, got %d", w.Code)
	}
	n, _ := env.Repos.Component.Count(t.Context(), true)
	if n != 3 {
		t.Fatalf("Library must be untouched without confirm, got %d components", n)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/library/clear?confirm=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/library/summary", nil)
	summary := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if summary["components"].(float64) != 0 || summary["suppliers"].(float64) != 0 {
		t.Errorf("Expected empty library, got %v", summary)
	}
}

func TestLibraryImportAndExport(t *testing.T) {
	router, _ := setupLibraryTest(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"uuid", "number", "name"},
		{"u1", "N1", "Screw"},
		{"", "N2", "Bolt"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow("Sheet1", cell, &row)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	w := testutil.DoMultipart(router, "/api/v1/library/import", "parts.xlsx", buf.Bytes(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	summary := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if summary["imported"].(float64) != 1 || summary["skipped"].(float64) != 1 {
		t.Errorf("Expected 1 imported and 1 skipped, got %v", summary)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/library/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Expected xlsx content type, got %q", ct)
	}
	exported, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer exported.Close()
	got, _ := exported.GetRows("Components")
	if len(got) != 2 || got[1][1] != "N1" {
		t.Errorf("Unexpected export rows: %v", got)
	}
}

func TestFileUploadDownload(t *testing.T) {
	router, _ := setupLibraryTest(t)

	w := testutil.DoMultipart(router, "/api/v1/files", "bracket.step", []byte("ISO-10303-21;"), map[string]string{
		"description": "bracket model",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	file := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := file["id"].(string)
	if file["description"] != "bracket model" {
		t.Errorf("Expected description, got %v", file["description"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/files/"+id+"/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "ISO-10303-21;" {
		t.Errorf("Unexpected content %q", w.Body.String())
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/files/"+id+"?confirm=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/files/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}
