package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ragchat/internal/parser"
	"ragchat/internal/ragerr"
	"ragchat/internal/session"
)

// maxUploadBytes caps in-memory document uploads at 32 MiB.
const maxUploadBytes = 32 << 20

type ChatHandler struct {
	ctrl *session.Controller
}

func NewChatHandler(ctrl *session.Controller) *ChatHandler {
	return &ChatHandler{ctrl: ctrl}
}

type sessionInfo struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Document string `json:"document,omitempty"`
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	s := h.ctrl.Create()
	Success(c, sessionInfo{ID: s.ID, State: string(s.State())})
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	s, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sessionInfo{ID: s.ID, State: string(s.State()), Document: s.DocumentName()})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	h.ctrl.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) History(c *gin.Context) {
	s, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, s.History())
}

// UploadDocument accepts a multipart file, extracts its text, and rebuilds
// the session's vector index from it.
func (h *ChatHandler) UploadDocument(c *gin.Context) {
	s, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		Fail(c, fmt.Errorf("%w: missing file upload: %v", ragerr.ErrInvalidConfig, err))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		Fail(c, fmt.Errorf("%w: file exceeds %d bytes", ragerr.ErrInvalidConfig, maxUploadBytes))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		Fail(c, fmt.Errorf("%w: read upload: %v", ragerr.ErrInvalidConfig, err))
		return
	}

	doc, err := parser.Extract(header.Filename, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		Fail(c, err)
		return
	}

	count, err := h.ctrl.LoadDocument(c.Request.Context(), s, doc)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"document": doc.Name, "passages": count})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat streams the answer back as server-sent events: one "message" event
// per fragment, a terminal "done" event carrying the full answer, or an
// "error" event. The client going away cancels the provider stream.
func (h *ChatHandler) Chat(c *gin.Context) {
	s, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, fmt.Errorf("%w: %v", ragerr.ErrInvalidConfig, err))
		return
	}

	answer, err := h.ctrl.Ask(c.Request.Context(), s, req.Message)
	if err != nil {
		Fail(c, err)
		return
	}
	defer answer.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	for {
		frag, err := answer.Recv()
		if errors.Is(err, io.EOF) {
			c.SSEvent("done", gin.H{"answer": answer.Full()})
			c.Writer.Flush()
			return
		}
		if err != nil {
			_, code, hint := classify(err)
			log.Warn().Err(err).Str("session", s.ID).Msg("completion stream failed")
			c.SSEvent("error", gin.H{"code": code, "hint": hint})
			c.Writer.Flush()
			return
		}
		c.SSEvent("message", frag)
		c.Writer.Flush()
	}
}
