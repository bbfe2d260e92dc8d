package v1

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
		"image/webp":      true,
		"image/gif":       true,
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
		".mp4":  true,
		".webm": true,
		".mov":  true,
	}
)

// multipartMemory is how much of a form is buffered in memory before spilling to disk.
const multipartMemory = 32 << 20

// uploadForm holds the opened files of one multipart upload.
type uploadForm struct {
	files   []domain.MediaFile
	closers []multipart.File
}

func (f *uploadForm) Close() {
	for _, c := range f.closers {
		c.Close()
	}
}

// readUploadForm opens every file sent as files[] (or files). Unsupported types and
// oversized files reject the whole request before anything is sent upstream.
func readUploadForm(r *http.Request, maxFileSize int64) (*uploadForm, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Msg("ParseMultipartForm failed")
		return nil, domain.FieldInvalid("files", "File too large or invalid format")
	}

	headers := r.MultipartForm.File["files[]"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		return nil, domain.FieldInvalid("files", "select at least one file")
	}

	var fields []domain.FieldError
	for _, fh := range headers {
		if msg := checkUpload(fh, maxFileSize); msg != "" {
			fields = append(fields, domain.FieldError{Field: "files." + fh.Filename, Message: msg})
		}
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(string(domain.SectionMedia), fields)
	}

	form := &uploadForm{}
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			form.Close()
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		form.closers = append(form.closers, file)
		form.files = append(form.files, domain.MediaFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        file,
		})
	}
	return form, nil
}

func checkUpload(fh *multipart.FileHeader, maxFileSize int64) string {
	contentType := fh.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		return fmt.Sprintf("%s: invalid file type. Allowed: JPEG, PNG, WebP, GIF, MP4, WebM, MOV", fh.Filename)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return fmt.Sprintf("%s: invalid file extension", fh.Filename)
	}
	if maxFileSize > 0 && fh.Size > maxFileSize {
		return fmt.Sprintf("%s is larger than %d MB", fh.Filename, maxFileSize>>20)
	}
	return ""
}
