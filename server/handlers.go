package server

import (
	"net/http"
	"strconv"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TranslateResponse struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Resolved    bool   `json:"resolved"`
	Lang        string `json:"lang"`
}

type BulkRequest struct {
	Words []string `json:"words" binding:"required"`
	Lang  string   `json:"lang"`
}

type BulkResponse struct {
	Translations    []string `json:"translations"`
	Lang            string   `json:"lang"`
	CachedCount     int      `json:"cached_count"`
	TranslatedCount int      `json:"translated_count"`
}

type LanguageRequest struct {
	Lang string `json:"lang" binding:"required"`
}

type LanguageResponse struct {
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
	Direction  string `json:"direction"`
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func engineFrom(c *gin.Context) (*gotmemo.Engine, bool) {
	e, ok := gotmemo.FromContext(c.Request.Context())
	if !ok {
		errorJSON(c, http.StatusServiceUnavailable, "no translation engine configured")
	}
	return e, ok
}

// translate answers immediately with the cached translation or the source
// text; clients poll or listen on /v1/events until resolved is true.
func (s *Server) translate(c *gin.Context) {
	e, ok := engineFrom(c)
	if !ok {
		return
	}

	text := c.Query("text")
	if text == "" {
		errorJSON(c, http.StatusBadRequest, "text is required")
		return
	}

	lang := c.Query("lang")
	if lang == "" {
		lang = e.TargetLang()
	} else {
		lang = gotmemo.CanonicalLang(lang)
	}

	disableFetch := false
	if raw := c.Query("disable_fetch"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "disable_fetch must be a boolean")
			return
		}
		disableFetch = v
	}

	translation := e.Translate(text, lang, disableFetch)
	_, resolved := e.Cached(text, lang)

	c.JSON(http.StatusOK, TranslateResponse{
		Text:        text,
		Translation: translation,
		Resolved:    resolved,
		Lang:        lang,
	})
}

func (s *Server) bulk(c *gin.Context) {
	if s.client == nil {
		errorJSON(c, http.StatusServiceUnavailable, "no bulk client configured")
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	lang := gotmemo.CanonicalLang(req.Lang)
	if lang == "" {
		if e, ok := gotmemo.FromContext(c.Request.Context()); ok {
			lang = e.TargetLang()
		} else {
			lang = s.client.TargetLang()
		}
	}

	result, err := s.client.ForLang(lang).Translate(c.Request.Context(), req.Words)
	if err != nil {
		s.logger.Error("bulk translation failed",
			zap.String("target_lang", lang),
			zap.Int("words", len(req.Words)),
			zap.Error(err),
		)
		errorJSON(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, BulkResponse{
		Translations:    result.Translations,
		Lang:            lang,
		CachedCount:     result.CachedCount,
		TranslatedCount: result.TranslatedCount,
	})
}

func (s *Server) getLanguage(c *gin.Context) {
	e, ok := engineFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, languageResponse(e))
}

func (s *Server) setLanguage(c *gin.Context) {
	e, ok := engineFrom(c)
	if !ok {
		return
	}

	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	lang := gotmemo.CanonicalLang(req.Lang)
	if lang == "" {
		errorJSON(c, http.StatusBadRequest, "lang is required")
		return
	}

	e.SetTargetLang(lang)
	s.logger.Info("target language changed", zap.String("target_lang", lang))
	c.JSON(http.StatusOK, languageResponse(e))
}

func languageResponse(e *gotmemo.Engine) LanguageResponse {
	target := e.TargetLang()
	return LanguageResponse{
		TargetLang: target,
		SourceLang: e.SourceLang(),
		Direction:  gotmemo.GetDirection(target),
	}
}
