// Package server exposes the quiz session over HTTP.
package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/ingest"
	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/session"
)

// Generator produces questions from document text.
type Generator interface {
	Run(ctx context.Context, in questiongen.Input, onProgress func(questiongen.Progress)) (*questiongen.Result, error)
}

// Config holds HTTP server settings.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

// Server serves the quiz API for a single session.
type Server struct {
	app  *fiber.App
	sess *session.Session
	gen  Generator
	log  *zap.Logger
}

// New creates a Server. gen may be nil, in which case generation
// requests fail with 503 and every other endpoint still works.
func New(cfg Config, sess *session.Session, gen Generator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BodyLimit == 0 {
		cfg.BodyLimit = 20 * 1024 * 1024
	}

	s := &Server{sess: sess, gen: gen, log: log}
	s.app = fiber.New(fiber.Config{
		AppName:               "studyquest",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger(log))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.Health)

	api := s.app.Group("/api")
	api.Post("/generate", s.Generate)
	api.Get("/questions", s.ListQuestions)
	api.Put("/questions/:index", s.ReplaceQuestion)
	api.Put("/edit-mode", s.SetEditMode)
	api.Put("/answers/:index", s.SetAnswer)
	api.Post("/submit", s.Submit)
	api.Get("/history", s.History)
	api.Get("/export", s.Export)
	api.Post("/import", s.Import)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()))
		return err
	}
}

func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "questions": s.sess.Len()})
}

// Generate handles POST /api/generate. It accepts JSON with a text field
// or a multipart form with uploaded files, and loads the result into the
// session.
func (s *Server) Generate(c *fiber.Ctx) error {
	if s.gen == nil {
		return ErrGeneratorUnavailable
	}

	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	text, err := s.requestText(c, req.Text)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "no document text provided")
	}

	q := req.quota()
	if err := q.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := s.gen.Run(c.UserContext(), questiongen.Input{Text: text, Quota: q, Notes: req.Notes}, nil)
	if err != nil {
		return err
	}

	s.sess.Load(res.Questions)
	return c.JSON(GenerateResponse{
		RunID:           res.RunID,
		Questions:       quiz.List(s.sess.Questions()),
		Generated:       quotaMap(res.Generated),
		ChunksTotal:     res.ChunksTotal,
		ChunksProcessed: res.ChunksProcessed,
	})
}

// requestText appends the text of any uploaded files to text.
func (s *Server) requestText(c *fiber.Ctx, text string) (string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return text, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid multipart form: "+err.Error())
	}
	files := form.File["files"]
	if len(files) == 0 {
		return text, nil
	}

	dir, err := os.MkdirTemp("", "studyquest-upload-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(files))
	for i, fh := range files {
		p := filepath.Join(dir, strconv.Itoa(i)+"-"+filepath.Base(fh.Filename))
		if err := c.SaveFile(fh, p); err != nil {
			return "", err
		}
		paths = append(paths, p)
	}

	docs, err := ingest.Texts(c.UserContext(), paths)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return docs, nil
	}
	return text + "\n\n" + docs, nil
}

func (s *Server) ListQuestions(c *fiber.Ctx) error {
	return c.JSON(QuestionsResponse{
		Questions: quiz.List(s.sess.Questions()),
		Answers:   s.sess.Answers(),
		EditMode:  s.sess.EditMode(),
	})
}

// ReplaceQuestion handles PUT /api/questions/:index with a question in
// its tagged JSON form.
func (s *Server) ReplaceQuestion(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}

	q, err := quiz.Unmarshal(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := s.sess.Replace(i, q); err != nil {
		return err
	}

	updated, err := s.sess.Question(i)
	if err != nil {
		return err
	}
	raw, err := quiz.Marshal(updated)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func (s *Server) SetEditMode(c *fiber.Ctx) error {
	var req EditModeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	s.sess.SetEditMode(req.EditMode)
	return c.JSON(req)
}

func (s *Server) SetAnswer(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}

	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.sess.SetAnswer(i, req.Answer); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) Submit(c *fiber.Ctx) error {
	outcomes, err := s.sess.Submit()
	if err != nil {
		return err
	}

	resp := SubmitResponse{Score: toScore(session.Summarize(outcomes))}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, OutcomeResponse{
			Index:      o.Index,
			Number:     o.Question.Num(),
			Answer:     o.Answer,
			Expected:   o.Question.AnswerText(),
			Correct:    o.Correct,
			TimesWrong: o.TimesWrong,
		})
	}
	return c.JSON(resp)
}

func (s *Server) History(c *fiber.Ctx) error {
	resp := HistoryResponse{History: []HistoryEntry{}}
	for i, e := range s.sess.History() {
		resp.History = append(resp.History, HistoryEntry{
			Index:      i,
			Number:     e.Question.Num(),
			Question:   e.Question.Prompt(),
			TimesWrong: e.TimesWrong,
		})
	}
	return c.JSON(resp)
}

// Export handles GET /api/export and returns the session as a download.
func (s *Server) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.sess.Export(&buf); err != nil {
		return err
	}
	c.Attachment(session.DefaultExportFile)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

// Import handles POST /api/import with an exported file as the body, or
// a multipart form with the file under "file".
func (s *Server) Import(c *fiber.Ctx) error {
	body := c.Body()
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "missing file: "+err.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		if err := s.sess.Import(f); err != nil {
			return err
		}
		return s.ListQuestions(c)
	}

	if err := s.sess.Import(bytes.NewReader(body)); err != nil {
		return err
	}
	return s.ListQuestions(c)
}
