package handlers

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProxyHandler forwards image fetches and LLM calls through the
// backend so the frontend never talks to third-party hosts directly
// and the LLM credential never leaves the server.
type ProxyHandler struct {
	client    *http.Client
	llmAPIURL string
	llmAPIKey string
}

// NewProxyHandler creates a ProxyHandler reading the LLM endpoint and
// credential from the environment.
func NewProxyHandler() *ProxyHandler {
	return &ProxyHandler{
		client:    &http.Client{Timeout: 30 * time.Second},
		llmAPIURL: utils.Getenv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		llmAPIKey: utils.Getenv("LLM_API_KEY", ""),
	}
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ProxyImage fetches a remote image and streams it back with open CORS
// headers and a one-day cache hint.
func (h *ProxyHandler) ProxyImage(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}

	rawURL := c.Query("url")
	if rawURL == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Missing url query parameter.", "url is required"))
		return
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid image URL.", rawURL))
		return
	}

	ext := strings.ToLower(path.Ext(parsed.Path))
	if !allowedImageExtensions[ext] {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "URL does not point to a supported image format.", ext))
		return
	}

	resp, err := h.client.Get(rawURL)
	if err != nil {
		utils.LogError(err, "ProxyImage: upstream fetch failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeUpstreamError, "Failed to fetch image from upstream.", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Pass the upstream status through unchanged.
		c.Status(resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}

// ProxyLLM forwards a chat-completion request body verbatim to the
// configured LLM endpoint, injecting the server-side API key.
func (h *ProxyHandler) ProxyLLM(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}

	if h.llmAPIKey == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeUpstreamError, "LLM credential is not configured on the server.", "LLM_API_KEY missing"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Failed to read request body.", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.llmAPIURL, strings.NewReader(string(body)))
	if err != nil {
		utils.LogError(err, "ProxyLLM: failed to build upstream request")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeUpstreamError, "Failed to build upstream request.", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.llmAPIKey)

	resp, err := h.client.Do(req)
	if err != nil {
		utils.LogError(err, "ProxyLLM: upstream call failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeUpstreamError, "LLM upstream call failed.", err.Error()))
		return
	}
	defer resp.Body.Close()

	// Upstream status and body go back verbatim, success or error.
	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}
