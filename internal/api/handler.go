// Package api exposes reconciliation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cleared-dev/cardrecon/internal/buildinfo"
	"github.com/cleared-dev/cardrecon/internal/extractor"
	"github.com/cleared-dev/cardrecon/internal/history"
	"github.com/cleared-dev/cardrecon/internal/matcher"
	"github.com/cleared-dev/cardrecon/internal/recon"
)

// DefaultThreshold is the tolerance in minutes when threshold_time is omitted.
const DefaultThreshold = 30

// Form fields of POST /api/reconcile.
const (
	fieldBankFile  = "bank_file"
	fieldHotelFile = "hotel_file"
	fieldClient    = "client_name"
	fieldThreshold = "threshold_time"
	fieldForce     = "force"
)

// Reconciler runs one reconciliation.
type Reconciler interface {
	Run(ctx context.Context, in recon.Input) (*recon.Outcome, error)
}

// Extractor turns an uploaded document into text lines.
type Extractor interface {
	ExtractBytes(ctx context.Context, name string, data []byte) ([]string, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Service   Reconciler
	Extractor Extractor
	// OutputDir receives a run folder per request. Empty skips writing.
	OutputDir string
	Logger    *slog.Logger
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler, maxUploadMB int) *fiber.App {
	cfg := fiber.Config{
		AppName:               "cardrecon " + buildinfo.Version,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	}
	if maxUploadMB > 0 {
		cfg.BodyLimit = maxUploadMB << 20
	}
	app := fiber.New(cfg)
	app.Use(recover.New())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", HandleHealth)
	app.Post("/api/reconcile", h.HandleReconcile)
}

// HandleHealth reports liveness and the build version.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// HandleReconcile reconciles the uploaded bank and hotel statements.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	threshold, err := parseThreshold(c.FormValue(fieldThreshold))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	force, err := parseForce(c.FormValue(fieldForce))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	bankName, bankData, err := readUpload(c, fieldBankFile)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	hotelName, hotelData, err := readUpload(c, fieldHotelFile)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	bankLines, err := h.Extractor.ExtractBytes(ctx, bankName, bankData)
	if err != nil {
		return writeError(c, statusFor(err), fmt.Sprintf("bank statement: %v", err))
	}
	hotelLines, err := h.Extractor.ExtractBytes(ctx, hotelName, hotelData)
	if err != nil {
		return writeError(c, statusFor(err), fmt.Sprintf("hotel statement: %v", err))
	}

	out, err := h.Service.Run(ctx, recon.Input{
		Client:           strings.TrimSpace(c.FormValue(fieldClient)),
		BankFile:         bankName,
		BankLines:        bankLines,
		HotelFile:        hotelName,
		HotelLines:       hotelLines,
		ToleranceMinutes: threshold,
		Force:            force,
		OutputDir:        h.OutputDir,
	})
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			h.logger().Error("reconcile failed", "bank", bankName, "hotel", hotelName, "err", err)
		}
		return writeError(c, status, err.Error())
	}
	return c.JSON(newReconcileResponse(out))
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func parseThreshold(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultThreshold, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number of minutes, got %q", fieldThreshold, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", fieldThreshold, n)
	}
	return n, nil
}

// parseForce accepts the strconv.ParseBool spellings. Empty means false.
func parseForce(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	force, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", fieldForce, raw)
	}
	return force, nil
}

func readUpload(c *fiber.Ctx, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("no file uploaded, use form field %q", field)
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return fh.Filename, data, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// statusFor maps an error from extraction or reconciliation to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, matcher.ErrNegativeTolerance):
		return fiber.StatusBadRequest
	case errors.Is(err, extractor.ErrNoText):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, history.ErrAlreadyReconciled):
		return fiber.StatusConflict
	default:
		// Includes matcher.ErrEngineFailure.
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ReconcileResponse{Error: msg})
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return writeError(c, status, err.Error())
}
