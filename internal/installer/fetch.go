package installer

import (
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/run"
)

// discoveryClient serves the small release-index requests. It carries a short
// dial timeout so an unreachable index fails the run quickly; archive
// downloads go through downloadFile instead and have no deadline at all.
var discoveryClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
	},
}

// discoveryGet fetches a release-index URL and returns the body. Any
// transport or non-200 response is a network fault.
func discoveryGet(url string) ([]byte, error) {
	resp, err := discoveryClient.Get(url)
	if err != nil {
		return nil, fault.Netf("fetch %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("[DEBUG] close response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fault.Netf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Netf("fetch %s: read body: %w", url, err)
	}
	return body, nil
}

// downloadFile fetches url into destPath. External fetch tools are preferred
// in order, curl then wget, falling back to the native HTTP client with a
// byte progress bar when neither is present or both fail. The final failure
// is a network fault and the partial file is removed.
func downloadFile(r run.Runner, url, destPath string) error {
	if _, err := r.LookPath("curl"); err == nil {
		if err := r.Run("curl", "-L", "--fail", "-#", "-o", destPath, url); err == nil {
			return nil
		}
		logger.Warn("[WARN] curl download failed, trying next fetch path\n")
	}
	if _, err := r.LookPath("wget"); err == nil {
		if err := r.Run("wget", "-nv", "-O", destPath, url); err == nil {
			return nil
		}
		logger.Warn("[WARN] wget download failed, trying native download\n")
	}
	if err := nativeDownload(url, destPath); err != nil {
		_ = os.Remove(destPath)
		return err
	}
	return nil
}

// nativeDownload streams url into destPath with the default HTTP client.
func nativeDownload(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fault.Netf("download %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("[DEBUG] close response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fault.Netf("download %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fault.Netf("create %s: %w", destPath, err)
	}
	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
	_, err = io.Copy(io.MultiWriter(out, bar), resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fault.Netf("download %s: %w", url, err)
	}
	return nil
}
