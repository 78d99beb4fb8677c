package pipeline

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/opactx/opactx/pkg/config"
	"github.com/opactx/opactx/pkg/ctxobj"
)

// Bundle file names.
const (
	BundleDataFileName     = "data.json"
	BundleManifestFileName = ".manifest"
)

type bundleInfo struct {
	Revision string
	Files    []string
}

// bundleRevision hashes the canonical data document. Identical contexts
// always produce identical revisions.
func bundleRevision(payload map[string]any) (string, error) {
	data, err := ctxobj.CanonicalJSON(map[string]any{ctxobj.RootNamespace: payload})
	if err != nil {
		return "", fmt.Errorf("render data document: %w", err)
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}

// writeBundle emits the bundle atomically: everything lands in a sibling
// temporary directory first, then replaces the output directory in one
// rename, so a crash never leaves a half-written bundle behind.
func writeBundle(projectDir, outDir string, payload map[string]any, out config.Output) (*bundleInfo, error) {
	data, err := ctxobj.CanonicalJSON(map[string]any{ctxobj.RootNamespace: payload})
	if err != nil {
		return nil, fmt.Errorf("render data document: %w", err)
	}
	digest := sha256.Sum256(data)
	revision := hex.EncodeToString(digest[:])

	roots := make([]string, 0, len(payload))
	for key := range payload {
		roots = append(roots, ctxobj.RootNamespace+"/"+key)
	}
	sort.Strings(roots)
	manifest, err := ctxobj.CanonicalJSON(map[string]any{
		"revision": revision,
		"roots":    roots,
	})
	if err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	files := map[string][]byte{
		BundleDataFileName:     data,
		BundleManifestFileName: manifest,
	}
	if out.IncludePolicy {
		policies, err := collectPolicies(projectDir)
		if err != nil {
			return nil, err
		}
		for name, contents := range policies {
			files[filepath.Join("policy", name)] = contents
		}
	}

	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create output parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".bundle-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		target := filepath.Join(staging, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create bundle directory: %w", err)
		}
		if err := os.WriteFile(target, files[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clear output directory: %w", err)
	}
	if err := os.Rename(staging, outDir); err != nil {
		return nil, fmt.Errorf("publish bundle: %w", err)
	}

	if out.Tarball {
		if err := writeTarball(outDir+".tar.gz", names, files); err != nil {
			return nil, err
		}
	}
	return &bundleInfo{Revision: revision, Files: names}, nil
}

// writeTarball packages the bundle files in sorted order with fixed
// metadata, so the archive bytes depend only on the bundle contents.
func writeTarball(path string, names []string, files map[string][]byte) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create tarball: %w", err)
	}
	gz := gzip.NewWriter(file)
	tw := tar.NewWriter(gz)
	for _, name := range names {
		contents := files[name]
		header := &tar.Header{
			Name:    filepath.ToSlash(name),
			Mode:    0o644,
			Size:    int64(len(contents)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(header); err != nil {
			file.Close()
			return fmt.Errorf("write tarball header: %w", err)
		}
		if _, err := tw.Write(contents); err != nil {
			file.Close()
			return fmt.Errorf("write tarball entry: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		file.Close()
		return fmt.Errorf("finish tarball: %w", err)
	}
	if err := gz.Close(); err != nil {
		file.Close()
		return fmt.Errorf("finish tarball: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("finish tarball: %w", err)
	}
	return os.Rename(tmp, path)
}
