package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/meridian/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Meridian API", "0.3.0")
	spec.SetDescription("maturity reports")
	spec.AddServer("/api")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Meridian API" || spec.Info.Version != "0.3.0" {
		t.Errorf("info = %+v", spec.Info)
	}
	if spec.Info.Description != "maturity reports" {
		t.Errorf("description = %q", spec.Info.Description)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}
	if spec.Paths == nil || spec.Components == nil {
		t.Fatal("paths and components must be initialized")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("t", "1")
	get := &openapi.Operation{Summary: "get"}
	post := &openapi.Operation{Summary: "post"}
	del := &openapi.Operation{Summary: "delete"}

	spec.AddOperation("get", "/reports/{id}", get)
	spec.AddOperation(http.MethodDelete, "/reports/{id}", del)
	spec.AddOperation(http.MethodPost, "/reports", post)
	spec.AddOperation(http.MethodPatch, "/reports", &openapi.Operation{})

	item := spec.Paths["/reports/{id}"]
	if item.Get != get || item.Delete != del {
		t.Errorf("path item = %+v", item)
	}
	if spec.Paths["/reports"].Post != post {
		t.Error("post not attached")
	}
}

func TestHelpers(t *testing.T) {
	if got := openapi.SchemaRef("Report").Ref; got != "#/components/schemas/Report" {
		t.Errorf("SchemaRef = %s", got)
	}
	if got := openapi.ResponseRef("NotFound").Ref; got != "#/components/responses/NotFound" {
		t.Errorf("ResponseRef = %s", got)
	}

	body := openapi.RequestBodyJSON("RequestCommand", true)
	if !body.Required || body.Content["application/json"].Schema.Ref != "#/components/schemas/RequestCommand" {
		t.Errorf("RequestBodyJSON = %+v", body)
	}

	arr := openapi.ResponseArrayJSON("reports", "Report")
	schema := arr.Content["application/json"].Schema
	if schema.Type != "array" || schema.Items.Ref != "#/components/schemas/Report" {
		t.Errorf("ResponseArrayJSON schema = %+v", schema)
	}

	path := openapi.PathParam("id", "Report ID")
	if path.In != "path" || !path.Required || path.Schema.Format != "uuid" {
		t.Errorf("PathParam = %+v", path)
	}

	query := openapi.QueryParam("status", "string", "Filter", false)
	if query.In != "query" || query.Required || query.Schema.Type != "string" {
		t.Errorf("QueryParam = %+v", query)
	}

	enum := openapi.EnumSchema("format", "pdf", "json")
	if len(enum.Enum) != 2 || enum.Enum[0] != "pdf" {
		t.Errorf("EnumSchema = %+v", enum)
	}
}

func TestComponents(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"BadRequest", "Forbidden", "NotFound", "Conflict", "ServerError"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response %s", name)
		}
	}

	c.AddSchemas(map[string]*openapi.Schema{"Report": {Type: "object"}})
	c.AddResponses(map[string]*openapi.Response{"Unauthorized": openapi.ErrorResponse("no token")})

	if _, ok := c.Schemas["Report"]; !ok {
		t.Error("schema not added")
	}
	if _, ok := c.Schemas["PageRequest"]; !ok {
		t.Error("default schema dropped")
	}
	resp := c.Responses["Unauthorized"]
	if resp == nil || resp.Content["application/json"].Schema.Ref != "#/components/schemas/Error" {
		t.Errorf("Unauthorized response = %+v", resp)
	}
}

func TestServeSpec(t *testing.T) {
	data, err := openapi.MarshalJSON(openapi.NewSpec("Meridian API", "1"))
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}

	var parsed struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.OpenAPI != "3.1.0" || parsed.Info.Title != "Meridian API" {
		t.Errorf("served = %+v", parsed)
	}
}

func TestConfig(t *testing.T) {
	cfg := openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Title != "Meridian API" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description default missing")
	}

	t.Setenv("SPEC_TITLE", "Maturity API")
	env := openapi.Config{}
	if err := env.Finalize(&openapi.ConfigEnv{Title: "SPEC_TITLE"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if env.Title != "Maturity API" {
		t.Errorf("env title = %q", env.Title)
	}

	env.Merge(&openapi.Config{Description: "overlay"})
	if env.Title != "Maturity API" || env.Description != "overlay" {
		t.Errorf("merged = %+v", env)
	}
}

func TestConfigServers(t *testing.T) {
	t.Setenv("SPEC_SERVERS", "https://maturity.example.com/, https://gateway.example.com")

	cfg := openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Servers: "SPEC_SERVERS"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	want := []string{"https://maturity.example.com/api", "https://gateway.example.com/api"}
	if got := cfg.ServerURLs("/api"); !slices.Equal(got, want) {
		t.Errorf("ServerURLs() = %v, want %v", got, want)
	}

	relative := openapi.Config{}
	if got := relative.ServerURLs("/api"); !slices.Equal(got, []string{"/api"}) {
		t.Errorf("relative ServerURLs() = %v", got)
	}

	bad := openapi.Config{Servers: []string{"not a url"}}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for relative server url")
	}
}

func TestRequireBearer(t *testing.T) {
	spec := openapi.NewSpec("Meridian API", "1")
	spec.RequireBearer("oidc", "JWT")

	scheme := spec.Components.SecuritySchemes["oidc"]
	if scheme == nil || scheme.Type != "http" || scheme.Scheme != "bearer" || scheme.BearerFormat != "JWT" {
		t.Fatalf("scheme = %+v", scheme)
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	var doc struct {
		Security []map[string][]string `json:"security"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Security) != 1 {
		t.Fatalf("security = %v", doc.Security)
	}
	if scopes, ok := doc.Security[0]["oidc"]; !ok || scopes == nil || len(scopes) != 0 {
		t.Errorf("oidc requirement = %v, %v", scopes, ok)
	}
}
