// Package translator wraps the Ollama HTTP API as the relay's translation
// gateway: availability probe, installed-model selection and bidirectional
// text translation with typed failures.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/claytonbrgsdev/slack-translator-app/internal/config"
	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/circuitbreaker"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
)

const defaultModel = "llama3.1:8b"

type Gateway struct {
	baseURL        string
	prefs          []string
	probeClient    *http.Client
	generateClient *http.Client
	breaker        *circuitbreaker.Wrapper
	logger         logger.Logger
}

func NewGateway(cfg config.TranslatorConfig, breaker *circuitbreaker.Wrapper, log logger.Logger) *Gateway {
	prefs := cfg.ModelPreferences
	if len(prefs) == 0 {
		prefs = constants.DefaultModelPreferences
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = constants.DefaultProbeTimeout
	}
	generateTimeout := cfg.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = constants.DefaultGenerateTimeout
	}

	return &Gateway{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		prefs:          prefs,
		probeClient:    &http.Client{Timeout: probeTimeout},
		generateClient: &http.Client{Timeout: generateTimeout},
		breaker:        breaker,
		logger:         log,
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Available re-probes the service on every call; a stale "available" answer
// is worse than the extra round trip.
func (g *Gateway) Available(ctx context.Context) bool {
	_, err := g.listModels(ctx)
	return err == nil
}

// Models returns the identifiers of the installed models.
func (g *Gateway) Models(ctx context.Context) ([]string, error) {
	return g.listModels(ctx)
}

// SelectModel returns the first installed model whose identifier contains a
// preferred substring, in preference order, falling back to the first listed
// model. Empty string means nothing is installed.
func (g *Gateway) SelectModel(ctx context.Context) string {
	models, err := g.listModels(ctx)
	if err != nil || len(models) == 0 {
		return ""
	}

	for _, pref := range g.prefs {
		for _, model := range models {
			if strings.Contains(model, pref) {
				return model
			}
		}
	}

	return models[0]
}

// Translate renders text into the target language. The prompt instructs the
// model to emit only the translated text; the caller renders failures with
// Placeholder while keeping the typed error.
func (g *Gateway) Translate(ctx context.Context, text string, target Language) (string, error) {
	start := time.Now()

	translated, err := g.translate(ctx, text, target)

	status := "success"
	if err != nil {
		status = "error"
		metrics.TranslationFailuresTotal.WithLabelValues(apperrors.Code(err)).Inc()
	}
	metrics.ObserveTranslationDuration(time.Since(start), string(target), status)

	return translated, err
}

func (g *Gateway) translate(ctx context.Context, text string, target Language) (string, error) {
	if !g.Available(ctx) {
		g.logger.WarnwCtx(ctx, "Translation service probe failed", "base_url", g.baseURL)
		return "", apperrors.ErrUnavailable.WithDetail("message", "translation service probe failed")
	}

	model := g.SelectModel(ctx)
	if model == "" {
		g.logger.DebugwCtx(ctx, "No installed model found, using default", "model", defaultModel)
		model = defaultModel
	}

	prompt := fmt.Sprintf(
		"Translate the following text into %s. Reply with only the translated text, without commentary, notes or quotes.\n\n%s",
		target.DisplayName(), text,
	)

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", apperrors.ErrInternal.WithCause(err)
	}

	result, err := g.execute(ctx, func() (interface{}, error) {
		return g.generate(ctx, body)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (g *Gateway) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if g.breaker == nil {
		return fn()
	}

	result, err := g.breaker.ExecuteWithContext(ctx, fn)
	g.breaker.RecordRequest(err == nil)
	if err != nil && result == nil {
		// The breaker rejects fast while open; report that as unavailability.
		if g.breaker.IsOpen() {
			return nil, apperrors.ErrUnavailable.WithCause(err).WithDetail("message", "translation circuit open")
		}
	}
	return result, err
}

func (g *Gateway) generate(ctx context.Context, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrTransport.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.generateClient.Do(req)
	if err != nil {
		return nil, apperrors.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return nil, apperrors.ErrUpstream.WithDetail("status", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.ErrMalformedResponse.WithCause(err)
	}

	if strings.TrimSpace(parsed.Response) == "" {
		return nil, apperrors.ErrMalformedResponse.WithDetail("message", "generate response missing 'response' field")
	}

	return strings.TrimSpace(parsed.Response), nil
}

func (g *Gateway) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, apperrors.ErrTransport.WithCause(err)
	}

	resp, err := g.probeClient.Do(req)
	if err != nil {
		return nil, apperrors.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return nil, apperrors.ErrUpstream.WithDetail("status", resp.StatusCode)
	}

	var parsed tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.ErrMalformedResponse.WithCause(err)
	}

	models := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

// Placeholder renders a gateway failure as the bracketed display string. The
// original text rides along so a failed translation still shows something
// readable; the typed error stays available for logs and metrics.
func Placeholder(err error, original string) string {
	if err == nil {
		return original
	}

	if apperrors.IsUnavailable(err) {
		return "[translation unavailable] " + original
	}
	return "[translation error] " + original
}
