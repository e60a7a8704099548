package controllers

import (
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

// MaxImageBytes is the largest accepted upload.
const MaxImageBytes int64 = 5 << 20

const maxFieldBytes = 4 << 10

var imageTypes = regexp.MustCompile(`jpeg|jpg|png|gif|webp`)

var (
	errNoImage      = errors.New("no image file provided")
	errInvalidImage = errors.New("images only")
	errFileTooLarge = errors.New("file too large")
)

// UploadController stores admin uploaded images through the configured storage backend.
type UploadController struct {
	store    storage.Storage
	maxBytes int64
	proxies  []*net.IPNet
}

// NewUploadController creates an UploadController writing to store.
func NewUploadController(store storage.Storage) *UploadController {
	return &UploadController{store: store, maxBytes: MaxImageBytes}
}

// WithTrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-Proto is believed.
// Unparsable entries are logged and skipped.
func (u *UploadController) WithTrustedProxies(proxies []string) *UploadController {
	u.proxies = nil
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil && ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		_, cidr, err := net.ParseCIDR(p)
		if err != nil {
			utils.Logger.Warn("ignoring trusted proxy", zap.String("value", p), zap.Error(err))
			continue
		}
		u.proxies = append(u.proxies, cidr)
	}
	return u
}

func (u *UploadController) fromTrustedProxy(ctx *gin.Context) bool {
	ip := net.ParseIP(ctx.RemoteIP())
	if ip == nil {
		return false
	}
	for _, cidr := range u.proxies {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

type uploadForm struct {
	folder      string
	baseNames   map[string]string
	filename    string
	contentType string
	data        []byte
}

// desiredBaseName honours the field aliases in priority order.
func (f *uploadForm) desiredBaseName() string {
	for _, name := range []string{"baseName", "desiredBaseName", "filenameBase"} {
		if v := f.baseNames[name]; v != "" {
			return v
		}
	}
	return ""
}

// readForm walks the multipart body once. Text fields count only when they arrive before
// the image part, which is the order browsers send FormData in.
func (u *UploadController) readForm(r *http.Request) (*uploadForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errNoImage
	}

	form := &uploadForm{baseNames: map[string]string{}}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if part.FileName() == "" {
			if form.data == nil {
				b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
				if err != nil {
					return nil, err
				}
				switch name := part.FormName(); name {
				case "folder":
					form.folder = string(b)
				case "baseName", "desiredBaseName", "filenameBase":
					form.baseNames[name] = string(b)
				}
			}
			_ = part.Close()
			continue
		}

		if part.FormName() != "image" || form.data != nil {
			_ = part.Close()
			continue
		}

		ext := strings.ToLower(storage.ExtName(part.FileName()))
		contentType := part.Header.Get("Content-Type")
		if !imageTypes.MatchString(ext) || !imageTypes.MatchString(contentType) {
			return nil, errInvalidImage
		}

		data, err := io.ReadAll(io.LimitReader(part, u.maxBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > u.maxBytes {
			return nil, errFileTooLarge
		}
		form.filename = part.FileName()
		form.contentType = contentType
		form.data = data
		_ = part.Close()
	}

	if form.data == nil {
		return nil, errNoImage
	}
	return form, nil
}

// UploadImage handles POST /api/upload/image.
func (u *UploadController) UploadImage(ctx *gin.Context) {
	form, err := u.readForm(ctx.Request)
	switch {
	case errors.Is(err, errNoImage):
		utils.Error(ctx, http.StatusBadRequest, "No image file provided")
		return
	case errors.Is(err, errInvalidImage):
		utils.Error(ctx, http.StatusBadRequest, "Images only!")
		return
	case errors.Is(err, errFileTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
		return
	case err != nil:
		utils.ErrorWithCause(ctx, http.StatusBadRequest, "Invalid upload", err)
		return
	}

	key := u.store.ObjectKey(form.folder, form.filename, form.desiredBaseName())
	url, err := u.store.Put(ctx.Request.Context(), key, bytes.NewReader(form.data), int64(len(form.data)), form.contentType)
	if err != nil {
		utils.Logger.Error("image upload failed", zap.String("key", key), zap.Error(err))
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error uploading image", err)
		return
	}

	if strings.HasPrefix(url, "/") {
		url = u.requestOrigin(ctx) + url
	}
	utils.Logger.Info("image uploaded",
		zap.String("driver", string(u.store.Driver())),
		zap.String("key", key),
		zap.Int("bytes", len(form.data)))

	utils.Success(ctx, gin.H{
		"message":  "Image uploaded successfully",
		"imageUrl": url,
		"key":      key,
	})
}

// DeleteImage handles DELETE /api/upload/image.
func (u *UploadController) DeleteImage(ctx *gin.Context) {
	var req struct {
		ImageURL string `json:"imageUrl"`
		Key      string `json:"key"`
	}
	_ = ctx.ShouldBindJSON(&req)

	target := strings.TrimSpace(req.Key)
	if target == "" {
		target = strings.TrimSpace(req.ImageURL)
	}
	if target == "" {
		utils.Error(ctx, http.StatusBadRequest, "imageUrl or key is required")
		return
	}

	if !storage.DeleteImage(ctx.Request.Context(), u.store, target) {
		utils.Error(ctx, http.StatusInternalServerError, "Error deleting image")
		return
	}
	utils.Message(ctx, http.StatusOK, "Image deleted successfully")
}

// requestOrigin is scheme://host as seen by the client. X-Forwarded-Proto counts only
// when the request came through a trusted proxy.
func (u *UploadController) requestOrigin(ctx *gin.Context) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" && u.fromTrustedProxy(ctx) {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + ctx.Request.Host
}
