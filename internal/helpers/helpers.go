package helpers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"

	"github.com/musa-app/musa-api/internal/apperr"
)

const (
	AvatarFolder = "avatars"
	SpotFolder   = "spots"
	UGCFolder    = "ugc"
)

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

func RemoveDuplicates(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	return hasLower && hasUpper && hasNumber
}

// GenerateToken returns a random hex token for email confirmation and
// password reset links.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return hex.EncodeToString(buf), nil
}

// UploadImage pushes a single image (path, URL or data URI) to Cloudinary and
// returns the hosted secure URL. With a nil client the source is returned
// unchanged.
func UploadImage(ctx context.Context, cld *cloudinary.Cloudinary, source, folder string) (string, error) {
	if cld == nil || strings.TrimSpace(source) == "" {
		return source, nil
	}
	result, err := cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: folder,
		Tags:   []string{"musa-app"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %v", err)
	}
	return result.SecureURL, nil
}

// HandleError translates a service error to the transport response. Domain
// errors carry their own status; anything else becomes a 500 and is left for
// the error middleware to log.
func HandleError(c *gin.Context, err error) {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}
