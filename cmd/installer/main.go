// Command installer builds the lox CLI with build metadata stamped in and
// copies the binary onto the PATH.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPkg = "lox/pkg/version"

func main() {
	customPath := flag.String("path", "", "custom install directory")
	commit := flag.String("commit", "", "git commit recorded in 'lox version' (default: git rev-parse)")
	flag.Parse()

	repoRoot, err := os.Getwd()
	if err != nil {
		exitWithError("unable to determine working directory", err)
	}

	if *commit == "" {
		*commit = gitCommit(repoRoot)
	}

	binaryName := binaryFor(runtime.GOOS)
	buildOutput := filepath.Join(repoRoot, binaryName)

	fmt.Println("Building lox CLI...")
	ldflags := buildFlags(*commit, time.Now().UTC())
	buildCmd := exec.Command("go", "build", "-ldflags", ldflags, "-o", buildOutput, "./cmd/lox")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	buildCmd.Dir = repoRoot
	if err := buildCmd.Run(); err != nil {
		exitWithError("go build failed", err)
	}
	defer os.Remove(buildOutput)

	targetDir := *customPath
	if targetDir == "" {
		targetDir = defaultInstallDir(runtime.GOOS)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		exitWithError("unable to create install directory", err)
	}

	destPath := filepath.Join(targetDir, binaryName)
	fmt.Printf("Installing to %s\n", destPath)
	if err := copyFile(buildOutput, destPath); err != nil {
		exitWithError("failed to copy binary (try running with elevated permissions)", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(destPath, 0o755); err != nil {
			exitWithError("failed to set executable bit", err)
		}
	}

	fmt.Println("lox installed. Run 'lox version' to check the build.")
}

func binaryFor(goos string) string {
	if goos == "windows" {
		return "lox.exe"
	}
	return "lox"
}

// buildFlags stamps the commit and build time into the version package.
func buildFlags(commit string, built time.Time) string {
	return strings.Join([]string{
		"-X " + versionPkg + ".GitCommit=" + commit,
		"-X " + versionPkg + ".BuildDate=" + built.Format(time.RFC3339),
	}, " ")
}

func gitCommit(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func defaultInstallDir(goos string) string {
	if goos != "windows" {
		return "/usr/local/bin"
	}
	if base := os.Getenv("LOCALAPPDATA"); base != "" {
		return filepath.Join(base, "Programs", "Lox")
	}
	return filepath.Join(os.TempDir(), "Lox")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func exitWithError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
