package handler

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"portfolioapi/internal/encoder"
	"portfolioapi/internal/model"
	"portfolioapi/internal/preview"
	"portfolioapi/internal/service"
)

const formFileField = "file"

// fileResponse is the API view of a stored file. The data URI itself is served by GetFile.
type fileResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	MediaType  string         `json:"type"`
	SizeBytes  int64          `json:"size"`
	Category   model.Category `json:"category"`
	UploadedAt time.Time      `json:"uploaded_at"`
	URL        string         `json:"url"`
}

type portfolioResponse struct {
	Profile  *fileResponse  `json:"profile"`
	Resume   *fileResponse  `json:"resume"`
	Projects []fileResponse `json:"projects"`
}

func toFileResponse(f *model.FileRecord) *fileResponse {
	if f == nil {
		return nil
	}
	return &fileResponse{
		ID:         f.ID,
		Name:       f.Name,
		MediaType:  f.MediaType,
		SizeBytes:  f.SizeBytes,
		Category:   f.Category,
		UploadedAt: f.UploadedAt,
		URL:        preview.DefaultFileURL(f.ID, false),
	}
}

func toPortfolioResponse(rec *model.PortfolioRecord) portfolioResponse {
	out := portfolioResponse{
		Profile:  toFileResponse(rec.Profile),
		Resume:   toFileResponse(rec.Resume),
		Projects: make([]fileResponse, 0, len(rec.Projects)),
	}
	for i := range rec.Projects {
		out.Projects = append(out.Projects, *toFileResponse(&rec.Projects[i]))
	}
	return out
}

// GetPortfolio returns the current record, the busy flag and completion stats.
func GetPortfolio(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec := svc.Files()
		return c.JSON(fiber.Map{
			"data":         toPortfolioResponse(rec),
			"is_uploading": svc.IsUploading(),
			"stats":        rec.Stats(),
		})
	}
}

// GetStats returns the completion stats only.
func GetStats(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Files().Stats())
	}
}

// UploadFiles stores the multipart files under field "file" into the category.
// Profile and resume accept exactly one file; project accepts several, processed in order.
func UploadFiles(svc service.PortfolioService, projectSoftCap int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := model.ParseCategory(c.Params("category"))
		if err != nil {
			return writeServiceError(c, err)
		}

		form, err := c.MultipartForm()
		if err != nil || len(form.File[formFileField]) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		files := form.File[formFileField]

		if category.Singleton() && len(files) > 1 {
			return writeError(c, fiber.StatusBadRequest, "SINGLE_FILE_ONLY", "only one file can be uploaded for "+category.String())
		}
		if category == model.Project && projectSoftCap > 0 && len(svc.Files().Projects)+len(files) > projectSoftCap {
			return writeError(c, fiber.StatusConflict, "TOO_MANY_FILES", "a portfolio holds at most "+strconv.Itoa(projectSoftCap)+" project files")
		}

		out := make([]fileResponse, 0, len(files))
		for _, fh := range files {
			rec, err := withUpload(fh, func(u service.Upload) (*model.FileRecord, error) {
				return svc.Upload(c.UserContext(), u, category)
			})
			if err != nil {
				return writeServiceError(c, err)
			}
			out = append(out, *toFileResponse(rec))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": out})
	}
}

// ReplaceFile replaces a file. With :id on a project it overwrites that entry in place.
// Route values alias fiber's request buffers, so the id is copied before it can end up in the stored record.
func ReplaceFile(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := model.ParseCategory(c.Params("category"))
		if err != nil {
			return writeServiceError(c, err)
		}

		fh, err := c.FormFile(formFileField)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		id := utils.CopyString(c.Params("id"))
		rec, err := withUpload(fh, func(u service.Upload) (*model.FileRecord, error) {
			return svc.Replace(c.UserContext(), u, category, id)
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		if rec == nil {
			return c.JSON(fiber.Map{"replaced": false})
		}
		return c.JSON(fiber.Map{"replaced": true, "data": toFileResponse(rec)})
	}
}

// DeleteFile removes a file. The id comes from :id or ?id= and is ignored for profile and resume.
func DeleteFile(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := model.ParseCategory(c.Params("category"))
		if err != nil {
			return writeServiceError(c, err)
		}
		id := utils.CopyString(c.Params("id"))
		if id == "" {
			id = utils.CopyString(c.Query("id"))
		}
		if category == model.Project && id == "" {
			return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required for project files")
		}
		if err := svc.Delete(c.UserContext(), id, category); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearPortfolio removes every file.
func ClearPortfolio(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.ClearAll(c.UserContext()); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetFile serves the decoded bytes of a stored file. ?download=1 sends it as an attachment.
func GetFile(svc service.PortfolioService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, data, err := svc.Content(c.UserContext(), utils.CopyString(c.Params("id")))
		if err != nil {
			return writeServiceError(c, err)
		}
		if c.QueryBool("download") {
			c.Attachment(rec.Name)
		}
		c.Set(fiber.HeaderContentType, rec.MediaType)
		return c.Send(data)
	}
}

// withUpload opens fh, resolves its media type and hands it to fn.
func withUpload(fh *multipart.FileHeader, fn func(service.Upload) (*model.FileRecord, error)) (*model.FileRecord, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", encoder.ErrEncodingFailure, fh.Filename, err)
	}
	defer f.Close()

	mediaType, err := resolveMediaType(fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return nil, fmt.Errorf("%w: detect type of %s: %w", encoder.ErrEncodingFailure, fh.Filename, err)
	}

	return fn(service.Upload{
		Name:      fh.Filename,
		MediaType: mediaType,
		Size:      fh.Size,
		Body:      f,
	})
}

// resolveMediaType trusts the declared part type unless it is missing or generic, in which case the content is sniffed.
func resolveMediaType(declared string, f multipart.File) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return strings.ToLower(mt), nil
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mt, _, _ := strings.Cut(detected.String(), ";")
	return strings.TrimSpace(mt), nil
}
