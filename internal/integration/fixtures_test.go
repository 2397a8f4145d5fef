// Package integration runs imports end to end against local stand-ins for
// recipe sites, AI vendors and the OCR service.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cooklang/cooklang-import/internal/config"
)

const jwtSecret = "integration-secret"

// ============================================================================
// Recipe site
// ============================================================================

const structuredPage = `<!DOCTYPE html>
<html><head><title>Pancakes | Example Kitchen</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Fluffy Pancakes",
  "recipeIngredient": ["2 eggs", "250 ml milk", "200 g flour"],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Whisk everything."},
    {"@type": "HowToStep", "text": "Fry in a hot pan."}
  ],
  "recipeYield": "4",
  "prepTime": "PT10M"
}
</script></head>
<body><h1>Fluffy Pancakes</h1></body></html>`

const plainPage = `<!DOCTYPE html>
<html><head><title>Grandma's Soup</title></head>
<body>
<nav>Home | About</nav>
<article>
<p>You need 1 onion, 2 carrots and a litre of stock.</p>
<p>Chop everything and simmer for 30 minutes.</p>
</article>
<script>var tracking = true;</script>
</body></html>`

func newRecipeSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pancakes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(structuredPage))
	})
	mux.HandleFunc("/soup", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(plainPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// ============================================================================
// OpenAI-compatible vendor
// ============================================================================

type chatCall struct {
	System string
	User   string
}

// fakeVendor answers chat completions. Extraction prompts get extractReply,
// everything else gets convertReply. A non-zero failStatus fails every call.
type fakeVendor struct {
	*httptest.Server

	mu           sync.Mutex
	calls        []chatCall
	extractReply string
	convertReply string
	failStatus   int
}

func newFakeVendor(t *testing.T) *fakeVendor {
	t.Helper()
	v := &fakeVendor{
		convertReply: ">> servings: 4\n\nWhisk @eggs{2} with @milk{250%ml}.",
		extractReply: `{"ingredients": ["1 onion", "2 carrots"], "instructions": ["Chop.", "Simmer."], "error": null}`,
	}
	v.Server = httptest.NewServer(http.HandlerFunc(v.handle))
	t.Cleanup(v.Server.Close)
	return v
}

func (v *fakeVendor) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var call chatCall
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			call.System = m.Content
		case "user":
			call.User = m.Content
		}
	}

	v.mu.Lock()
	v.calls = append(v.calls, call)
	fail := v.failStatus
	reply := v.convertReply
	if strings.Contains(call.System, "JSON") && strings.Contains(call.System, "ingredients") {
		reply = v.extractReply
	}
	v.mu.Unlock()

	if fail != 0 {
		w.WriteHeader(fail)
		w.Write([]byte(`{"error": {"message": "upstream exploded"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": reply}},
		},
	})
}

func (v *fakeVendor) Calls() []chatCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]chatCall(nil), v.calls...)
}

// ============================================================================
// Google Vision
// ============================================================================

func newFakeVision(t *testing.T, texts ...string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	byImage := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		mu.Lock()
		text := byImage[req.Requests[0].Image.Content]
		mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"fullTextAnnotation": map[string]string{"text": text}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	for i := 0; i+1 < len(texts); i += 2 {
		byImage[texts[i]] = texts[i+1]
	}
	return srv
}

// ============================================================================
// Configuration and tokens
// ============================================================================

func newConfig(providers map[string]string) *config.Config {
	ai := config.DefaultAIConfig()
	for name, baseURL := range providers {
		ai.Providers[name] = config.ProviderConfig{
			Enabled:     true,
			APIKey:      "test-key",
			BaseURL:     baseURL,
			Temperature: config.DefaultTemperature,
			MaxTokens:   config.DefaultMaxTokens,
		}
	}
	return &config.Config{
		Env:         "test",
		ServiceName: "cooklang-import-test",
		JWTSecret:   jwtSecret,
		AI:          ai,
	}
}

func bearer(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(jwtSecret))
	return "Bearer " + signed
}
