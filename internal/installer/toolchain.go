package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"armory/internal/fault"
	"armory/internal/logger"
	"armory/internal/state"
)

// goInstallDir is where the managed Go toolchain lives. The whole directory
// is replaced on upgrade.
const goInstallDir = "/usr/local/go"

// Release index endpoints. Package variables so tests can point them at a
// local server.
var (
	goIndexJSON = "https://go.dev/dl/?mode=json"
	goIndexHTML = "https://go.dev/dl/"
)

// goRelease mirrors one entry of the go.dev download index.
type goRelease struct {
	Version string `json:"version"` // e.g. "go1.24.5"
	Stable  bool   `json:"stable"`
}

// goVersionPattern matches stable archive names in the HTML listing, e.g.
// "go1.24.5.linux-amd64.tar.gz". Release candidates and betas have no third
// dotted component and never match.
var goVersionPattern = regexp.MustCompile(`go([0-9]+\.[0-9]+\.[0-9]+)\.`)

// installToolchain keeps the Go toolchain current. Only the Linux family is
// supported; any other OS aborts the run. When an install or upgrade happens,
// the prior install directory is removed in full first and no rollback is
// attempted; a failed extraction converges on the next run.
func (in *Installer) installToolchain() error {
	if in.Ctx.OS != "Linux" {
		return fault.Envf("toolchain install supports only the Linux family, not %s", in.Ctx.OS)
	}
	arch, err := toolchainArch(in.Ctx.Arch)
	if err != nil {
		return err
	}

	installed := in.installedGoVersion()
	if installed == "" {
		logger.Info("[INFO] No toolchain installed yet\n")
	} else {
		logger.Debug("[DEBUG] Installed toolchain version: %s\n", installed)
	}
	latest, err := latestGoVersion()
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Latest toolchain version: %s\n", latest)
	if installed != "" && compareVersions(installed, latest) >= 0 {
		logger.Info("[INFO] Toolchain %s already current\n", installed)
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "armory-toolchain-")
	if err != nil {
		return fault.Execf("create download directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archiveName := fmt.Sprintf("go%s.linux-%s.tar.gz", latest, arch)
	archivePath := filepath.Join(tmpDir, archiveName)
	logger.Info("[INFO] Downloading toolchain %s (%s)\n", latest, arch)
	if err := downloadFile(in.Run, goIndexHTML+archiveName, archivePath); err != nil {
		return err
	}

	logger.Info("[INFO] Installing toolchain %s to %s\n", latest, goInstallDir)
	if err := in.Run.Elevated("rm", "-rf", goInstallDir); err != nil {
		return fault.Execf("remove previous toolchain at %s: %w", goInstallDir, err)
	}
	if err := in.Run.Elevated("tar", "-C", filepath.Dir(goInstallDir), "-xzf", archivePath); err != nil {
		return fault.Execf("extract toolchain archive: %w", err)
	}

	// Make the new toolchain visible to the rest of this run and to future
	// shells.
	binDir := filepath.Join(goInstallDir, "bin")
	appendProcessPath(binDir)
	appendProcessPath(in.Ctx.GoBin)
	if in.Profile.EnsurePath(binDir) {
		logger.Info("[INFO] Added %s to PATH\n", binDir)
	}
	if in.Profile.EnsurePath(in.Ctx.GoBin) {
		logger.Info("[INFO] Added %s to PATH\n", in.Ctx.GoBin)
	}
	if err := in.Profile.Save(); err != nil {
		return err
	}

	in.State.Toolchain = &state.ToolchainState{Version: latest, InstallDir: goInstallDir}
	return nil
}

// removeToolchain deletes the toolchain install and workspace directories on
// the supported family when the run ledger shows armory installed them. The
// managed PATH directives are dropped on every OS family.
func (in *Installer) removeToolchain() error {
	if in.Ctx.OS == "Linux" {
		if in.State.Toolchain == nil {
			logger.Info("[INFO] Toolchain not installed by armory; leaving in place\n")
		} else {
			dir := in.State.Toolchain.InstallDir
			if dir == "" {
				dir = goInstallDir
			}
			if _, err := os.Stat(dir); err == nil {
				logger.Info("[INFO] Removing toolchain at %s\n", dir)
				if err := in.Run.Elevated("rm", "-rf", dir); err != nil {
					return fault.Execf("remove toolchain at %s: %w", dir, err)
				}
			}
			workspace := filepath.Join(in.Ctx.Home, "go")
			if _, err := os.Stat(workspace); err == nil {
				logger.Info("[INFO] Removing toolchain workspace %s\n", workspace)
				if err := os.RemoveAll(workspace); err != nil {
					return fault.Execf("remove toolchain workspace %s: %w", workspace, err)
				}
			}
			in.State.Toolchain = nil
		}
	}
	in.Profile.RemovePath(filepath.Join(goInstallDir, "bin"))
	in.Profile.RemovePath(in.Ctx.GoBin)
	return nil
}

// installedGoVersion asks the installed toolchain for its version, preferring
// the managed install over whatever PATH resolves. Absence is not an error;
// it just means an install is due.
func (in *Installer) installedGoVersion() string {
	goBin := filepath.Join(goInstallDir, "bin", "go")
	if _, err := os.Stat(goBin); err != nil {
		p, err := in.Run.LookPath("go")
		if err != nil {
			return ""
		}
		goBin = p
	}
	out, err := in.Run.Output(goBin, "version")
	if err != nil {
		return ""
	}
	return parseGoVersion(out)
}

// parseGoVersion extracts "1.24.5" from `go version go1.24.5 linux/amd64`
// style output. Returns "" when no version field is present.
func parseGoVersion(out string) string {
	for _, field := range strings.Fields(out) {
		v, ok := strings.CutPrefix(field, "go")
		if ok && v != "" && v[0] >= '0' && v[0] <= '9' {
			return v
		}
	}
	return ""
}

// latestGoVersion discovers the newest stable release. The structured JSON
// index is preferred; when it cannot be fetched or decoded, the HTML listing
// is scraped for stable archive names. Both paths exclude pre-releases.
func latestGoVersion() (string, error) {
	if body, err := discoveryGet(goIndexJSON); err == nil {
		if v := latestFromJSON(body); v != "" {
			return v, nil
		}
		logger.Warn("[WARN] Release index JSON had no stable versions, scraping listing\n")
	} else {
		logger.Warn("[WARN] Release index JSON unavailable, scraping listing: %v\n", err)
	}
	body, err := discoveryGet(goIndexHTML)
	if err != nil {
		return "", err
	}
	if v := latestFromHTML(body); v != "" {
		return v, nil
	}
	return "", fault.Netf("no stable toolchain version found in release index")
}

// latestFromJSON picks the maximum stable version out of the JSON index.
func latestFromJSON(body []byte) string {
	var releases []goRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		logger.Debug("[DEBUG] decode release index: %v\n", err)
		return ""
	}
	best := ""
	for _, rel := range releases {
		if !rel.Stable {
			continue
		}
		v := strings.TrimPrefix(rel.Version, "go")
		if best == "" || compareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}

// latestFromHTML picks the maximum three-part dotted version mentioned in the
// HTML listing.
func latestFromHTML(body []byte) string {
	best := ""
	for _, m := range goVersionPattern.FindAllSubmatch(body, -1) {
		v := string(m[1])
		if best == "" || compareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}

// toolchainArch maps the machine architecture onto the archive naming
// convention. Anything outside the two supported spellings per architecture
// is fatal.
func toolchainArch(arch string) (string, error) {
	switch arch {
	case "x86_64", "amd64":
		return "amd64", nil
	case "aarch64", "arm64":
		return "arm64", nil
	}
	return "", fault.Envf("unsupported architecture for toolchain install: %s", arch)
}

// compareVersions orders two dotted version strings component by component,
// numerically where both components are numbers and lexicographically
// otherwise. Missing components count as zero. Returns -1, 0 or 1.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := "0", "0"
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		ai, aerr := strconv.Atoi(av)
		bi, berr := strconv.Atoi(bv)
		if aerr == nil && berr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// appendProcessPath adds a directory to this process's PATH when absent, so
// later phases of the same run can use freshly installed binaries.
func appendProcessPath(dir string) {
	current := os.Getenv("PATH")
	for _, component := range strings.Split(current, ":") {
		if component == dir {
			return
		}
	}
	_ = os.Setenv("PATH", current+":"+dir)
}
