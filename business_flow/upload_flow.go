package businessflow

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// maxUploadSize caps single uploads at 100MB.
const maxUploadSize = 100 << 20

var allowedUploadExtensions = map[string]string{
	".jpg":  models.MediaTypeImage,
	".jpeg": models.MediaTypeImage,
	".png":  models.MediaTypeImage,
	".gif":  models.MediaTypeImage,
	".webp": models.MediaTypeImage,
	".mp4":  models.MediaTypeVideo,
	".mov":  models.MediaTypeVideo,
	".webm": models.MediaTypeVideo,
	".mkv":  models.MediaTypeVideo,
}

// UploadFlow moves campaign asset files in and out of the file store
type UploadFlow interface {
	Upload(ctx context.Context, req *dto.UploadRequest, metadata *ClientMetadata) (*dto.UploadResponse, error)
	UploadBatch(ctx context.Context, reqs []*dto.UploadRequest, metadata *ClientMetadata) (*dto.UploadBatchResponse, error)
	DeleteUpload(ctx context.Context, req *dto.DeleteUploadRequest, metadata *ClientMetadata) (*dto.DeleteUploadResponse, error)
}

// UploadFlowImpl implements the upload business flow
type UploadFlowImpl struct {
	fileStore services.FileStore
	auditRepo repository.AuditLogRepository
}

// NewUploadFlow creates a new upload flow instance
func NewUploadFlow(fileStore services.FileStore, auditRepo repository.AuditLogRepository) UploadFlow {
	return &UploadFlowImpl{
		fileStore: fileStore,
		auditRepo: auditRepo,
	}
}

// Upload stores a single file under a timestamped random name. Image
// uploads also get a JPEG thumbnail stored next to the original.
func (f *UploadFlowImpl) Upload(ctx context.Context, req *dto.UploadRequest, metadata *ClientMetadata) (*dto.UploadResponse, error) {
	if req == nil || req.Content == nil {
		return nil, NewBusinessError(CodeInvalidInput, "a file is required", ErrUploadMissingFile)
	}

	ext := strings.ToLower(path.Ext(req.Filename))
	mediaType, ok := allowedUploadExtensions[ext]
	if !ok {
		return nil, NewBusinessErrorf(CodeInvalidInput, "file extension %q is not allowed", ErrInvalidMediaType, ext)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(req.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, NewBusinessError(CodeStorageFailure, "failed to read upload", err)
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, mediaType+"/") {
		return nil, NewBusinessError(CodeInvalidInput, "file content does not match its extension", ErrInvalidMediaType)
	}
	if detected == "application/octet-stream" {
		if fromExt := mime.TypeByExtension(ext); fromExt != "" {
			detected = fromExt
		}
	}

	name, err := uploadFilename(ext)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to build filename", err)
	}
	storedPath := path.Join("uploads", utils.UTCNow().Format("2006-01-02"), name)

	full := io.LimitReader(io.MultiReader(bytes.NewReader(head), req.Content), maxUploadSize+1)

	var payload bytes.Buffer
	written, err := io.Copy(&payload, full)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to read upload", err)
	}
	if written > maxUploadSize {
		return nil, NewBusinessError(CodeInvalidInput, "file size exceeds 100MB", nil)
	}

	if _, err := f.fileStore.Save(storedPath, bytes.NewReader(payload.Bytes())); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to store file", err)
	}

	resp := &dto.UploadResponse{
		FileURL:   storedPath,
		MediaType: mediaType,
		MimeType:  detected,
		SizeBytes: written,
	}

	if mediaType == models.MediaTypeImage {
		thumbPath, err := f.storeThumbnail(storedPath, payload.Bytes())
		if err == nil {
			resp.ThumbnailURL = &thumbPath
		}
	}

	_ = createAuditLog(ctx, f.auditRepo, req.UserID, models.AuditActionMediaUploaded,
		fmt.Sprintf("File stored at %s (%d bytes)", storedPath, written), true, nil, metadata)

	return resp, nil
}

// UploadBatch stores several files, collecting per-file failures instead of
// aborting the whole batch.
func (f *UploadFlowImpl) UploadBatch(ctx context.Context, reqs []*dto.UploadRequest, metadata *ClientMetadata) (*dto.UploadBatchResponse, error) {
	if len(reqs) == 0 {
		return nil, NewBusinessError(CodeInvalidInput, "at least one file is required", ErrUploadMissingFile)
	}

	resp := &dto.UploadBatchResponse{}
	for _, req := range reqs {
		uploaded, err := f.Upload(ctx, req, metadata)
		if err != nil {
			name := ""
			if req != nil {
				name = req.Filename
			}
			resp.Failures = append(resp.Failures, dto.UploadFailure{
				Filename: name,
				Error:    err.Error(),
			})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, *uploaded)
	}
	return resp, nil
}

// DeleteUpload removes a stored file and its thumbnail if one exists.
func (f *UploadFlowImpl) DeleteUpload(ctx context.Context, req *dto.DeleteUploadRequest, metadata *ClientMetadata) (*dto.DeleteUploadResponse, error) {
	if req == nil || req.FileURL == "" {
		return nil, NewBusinessError(CodeInvalidInput, "file path is required", ErrUploadPathRequired)
	}

	if !f.fileStore.Exists(req.FileURL) {
		return nil, NewBusinessError(CodeNotFound, "file not found", ErrMediaNotFound)
	}

	if err := f.fileStore.Delete(req.FileURL); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to delete file", err)
	}

	thumb := thumbnailPath(req.FileURL)
	if f.fileStore.Exists(thumb) {
		_ = f.fileStore.Delete(thumb)
	}

	_ = createAuditLog(ctx, f.auditRepo, req.UserID, models.AuditActionMediaDeleted,
		fmt.Sprintf("File deleted at %s", req.FileURL), true, nil, metadata)

	return &dto.DeleteUploadResponse{FileURL: req.FileURL}, nil
}

// storeThumbnail decodes the image and stores a bounded JPEG next to it.
func (f *UploadFlowImpl) storeThumbnail(storedPath string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	thumb := resizeImage(img, utils.ThumbnailMaxSide)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 75}); err != nil {
		return "", err
	}

	thumbPath := thumbnailPath(storedPath)
	if _, err := f.fileStore.Save(thumbPath, &buf); err != nil {
		return "", err
	}
	return thumbPath, nil
}

func thumbnailPath(storedPath string) string {
	dir, name := path.Split(storedPath)
	base := strings.TrimSuffix(name, path.Ext(name))
	return path.Join(dir, "thumbs", base+".jpg")
}

// uploadFilename builds a {timestamp}_{random8}{ext} name.
func uploadFilename(ext string) (string, error) {
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%x%s", utils.UTCNowFormat(utils.UploadTimestampLayout), random, ext), nil
}

// resizeImage scales the image down so its longest side fits maxDim,
// compositing onto white for images with transparency.
func resizeImage(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
