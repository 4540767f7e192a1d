package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// LogoDownloader handles downloading and caching token logos.
type LogoDownloader struct {
	basePath string
	client   *http.Client
}

// NewLogoDownloader creates a new LogoDownloader.
func NewLogoDownloader() (*LogoDownloader, error) {
	path, err := getAssetsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets path: %w", err)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	// Optimize HTTP Transport to prevent connection leaks
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &LogoDownloader{
		basePath: path,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// DownloadLogo fetches the logo for a mint from the given URL if not cached.
// Returns the local file path on success. Images are normalized to 64x64.
func (d *LogoDownloader) DownloadLogo(mint, imageURL string) (string, error) {
	// Security: Sanitize mint to prevent path traversal
	safeMint := sanitizeMint(mint)
	if safeMint == "" {
		return "", fmt.Errorf("invalid mint: %s", mint)
	}
	if imageURL == "" {
		return "", fmt.Errorf("no image url for mint %s", mint)
	}

	fileName := strings.ToLower(safeMint) + ".png"
	filePath := filepath.Join(d.basePath, fileName)

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Already exists (Cache Hit)
	}

	resp, err := d.client.Get(imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Resize with high-quality Lanczos filter
	resizedImg := imaging.Resize(srcImg, 64, 64, imaging.Lanczos)

	if err := imaging.Save(resizedImg, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// LogoPath returns the local path for a mint's logo.
func (d *LogoDownloader) LogoPath(mint string) string {
	return filepath.Join(d.basePath, strings.ToLower(sanitizeMint(mint))+".png")
}

// sanitizeMint keeps only characters valid in a base58 mint address.
func sanitizeMint(mint string) string {
	var b strings.Builder
	for _, r := range mint {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func getAssetsPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "PumpBot", "assets", "logos"), nil
}
