// Package server exposes the edit pipeline as an HTTP RPC surface, one route
// per operation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Fepozopo/pixelview/pkg/config"
	"github.com/Fepozopo/pixelview/pkg/history"
	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/session"
)

type Server struct {
	sess *session.EditSession
	log  zerolog.Logger
	cfg  *config.Config
}

func New(sess *session.EditSession, log zerolog.Logger, cfg *config.Config) *Server {
	return &Server{
		sess: sess,
		log:  log.With().Str("component", "server").Logger(),
		cfg:  cfg,
	}
}

// Handler builds the gin router. Every operation is a POST carrying its
// parameters as JSON; preview mode rides in as realTime, matching the
// request schema the UI already speaks.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.requestLogger(), gin.CustomRecovery(handlePanics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ops := r.Group("/ops/v1")
	{
		ops.POST("/crop", bindOp(s, func(p struct {
			session.CropRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.CropRequest, p.RealTime
		}))
		ops.POST("/resize", bindOp(s, func(p struct {
			session.ResizeRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.ResizeRequest, p.RealTime
		}))
		ops.POST("/rotate", bindOp(s, func(p struct {
			session.RotateRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.RotateRequest, p.RealTime
		}))
		ops.POST("/brightness", bindOp(s, func(p struct {
			session.BrightnessRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.BrightnessRequest, p.RealTime
		}))
		ops.POST("/hsl", bindOp(s, func(p struct {
			session.HSLRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.HSLRequest, p.RealTime
		}))
		ops.POST("/tint", bindOp(s, func(p struct {
			session.TintRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.TintRequest, p.RealTime
		}))
		ops.POST("/blur", bindOp(s, func(p struct {
			session.BlurRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.BlurRequest, p.RealTime
		}))
		ops.POST("/binarize", bindOp(s, func(p struct {
			session.BinarizeRequest
			RealTime bool `json:"realTime"`
		}) (session.Request, bool) {
			return p.BinarizeRequest, p.RealTime
		}))
		ops.POST("/pixelate", bindOp(s, func(p session.PixelateRequest) (session.Request, bool) {
			return p, false
		}))
		ops.POST("/flipX", s.fixedOp(session.FlipXRequest{}))
		ops.POST("/flipY", s.fixedOp(session.FlipYRequest{}))
		ops.POST("/invert", s.fixedOp(session.InvertRequest{}))

		ops.POST("/gifEffects", s.gifEffects)

		ops.POST("/undo", s.undo)
		ops.POST("/redo", s.redo)
		ops.POST("/reset", s.reset)
		ops.POST("/revert", s.revert)

		ops.GET("/metadata", s.metadata(false))
		ops.GET("/metadata/original", s.metadata(true))

		ops.POST("/images", s.updateOriginalImages)
		ops.POST("/history", s.appendHistoryState)
	}
	return r
}

// bindOp wires one JSON-parameter operation route through the session.
func bindOp[P any](s *Server, split func(P) (session.Request, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p P
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req, realTime := split(p)
		mode := session.Commit
		if realTime {
			mode = session.Preview
		}
		s.apply(c, req, mode)
	}
}

func (s *Server) fixedOp(req session.Request) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.apply(c, req, session.Commit)
	}
}

func (s *Server) apply(c *gin.Context, req session.Request, mode session.Mode) {
	ctx, cancel := s.opContext(c)
	defer cancel()

	st, err := s.sess.Apply(ctx, req, mode)
	s.respondState(c, req.Name(), st, err)
}

func (s *Server) gifEffects(c *gin.Context) {
	var req session.GIFEffectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx, cancel := s.opContext(c)
	defer cancel()

	st, err := s.sess.ApplyGIFEffects(ctx, req)
	s.respondState(c, req.Name(), st, err)
}

func (s *Server) undo(c *gin.Context) {
	st, ok := s.sess.Undo()
	respondMaybe(c, st, ok)
}

func (s *Server) redo(c *gin.Context) {
	st, ok := s.sess.Redo()
	respondMaybe(c, st, ok)
}

func (s *Server) reset(c *gin.Context) {
	st, ok := s.sess.Reset()
	respondMaybe(c, st, ok)
}

func (s *Server) revert(c *gin.Context) {
	st := s.sess.RevertToLastState()
	respondMaybe(c, st, st != nil)
}

func (s *Server) metadata(original bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := s.opContext(c)
		defer cancel()

		var (
			metas any
			err   error
		)
		if original {
			metas, err = s.sess.OriginalMetadata(ctx)
		} else {
			metas, err = s.sess.Metadata(ctx)
		}
		var bulk *pverr.BulkError
		if err != nil && !errors.As(err, &bulk) {
			c.JSON(http.StatusOK, gin.H{"metadata": nil, "message": err.Error()})
			return
		}
		resp := gin.H{"metadata": metas}
		if bulk != nil {
			resp["errors"] = bulkMessages(bulk)
		}
		c.JSON(http.StatusOK, resp)
	}
}

type refsBody struct {
	Refs []string `json:"refs" binding:"required"`
}

func (s *Server) updateOriginalImages(c *gin.Context) {
	var body refsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refs required"})
		return
	}
	s.sess.UpdateOriginalImages(parseRefs(body.Refs))
	respondMaybe(c, s.sess.Current(), true)
}

func (s *Server) appendHistoryState(c *gin.Context) {
	var body refsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refs required"})
		return
	}
	st := s.sess.AppendHistoryState(parseRefs(body.Refs))
	respondMaybe(c, st, true)
}

func (s *Server) opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if s.cfg != nil && s.cfg.RequestTimeout > 0 {
		timeout = s.cfg.RequestTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// respondState maps session results onto the wire: validation failures are
// 400s, everything else answers 200 with images null on failure, matching
// the null-on-error contract the UI expects.
func (s *Server) respondState(c *gin.Context, op string, st history.State, err error) {
	var bulk *pverr.BulkError
	switch {
	case err == nil:
	case pverr.IsKind(err, pverr.KindValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.As(err, &bulk):
	default:
		s.log.Warn().Str("op", op).Err(err).Msg("operation failed")
		c.JSON(http.StatusOK, gin.H{"images": nil, "message": err.Error()})
		return
	}

	resp := gin.H{"images": stateStrings(st)}
	if bulk != nil {
		resp["errors"] = bulkMessages(bulk)
	}
	c.JSON(http.StatusOK, resp)
}

func respondMaybe(c *gin.Context, st history.State, ok bool) {
	if !ok {
		c.JSON(http.StatusOK, gin.H{"images": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": stateStrings(st)})
}

func stateStrings(st history.State) []string {
	if st == nil {
		return nil
	}
	out := make([]string, len(st))
	for i, ref := range st {
		out[i] = ref.String()
	}
	return out
}

func bulkMessages(bulk *pverr.BulkError) map[int]string {
	msgs := make(map[int]string, len(bulk.Items))
	for i, err := range bulk.Items {
		msgs[i] = err.Error()
	}
	return msgs
}

func parseRefs(raw []string) []imageref.Ref {
	refs := make([]imageref.Ref, len(raw))
	for i, s := range raw {
		refs[i] = imageref.Parse(s)
	}
	return refs
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func handlePanics(c *gin.Context, recovered any) {
	if err, ok := recovered.(error); ok {
		c.String(http.StatusInternalServerError, err.Error())
	}
	c.AbortWithStatus(http.StatusInternalServerError)
}
