package colorbag

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/colorbag/blobstore"
	"github.com/hupe1980/colorbag/codec"
	"github.com/hupe1980/colorbag/dataset"
)

// Blob names of a published release, relative to the release prefix.
const (
	datasetBlobName  = "bags.cbds"
	codebookBlobName = "codebook.cbvc"
	manifestBlobName = "manifest.json"
)

// Manifest describes one published release. It is uploaded last, so a
// release with a readable manifest is guaranteed complete.
type Manifest struct {
	Name        string    `json:"name"`
	Dataset     string    `json:"dataset"`
	Codebook    string    `json:"codebook,omitempty"`
	Codec       string    `json:"codec"`
	NumBags     int       `json:"num_bags"`
	K           int       `json:"k"`
	Compression string    `json:"compression"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publish uploads the dataset at datasetPath (and, if non-empty, the
// codebook at codebookPath) to the blob store under name, then commits
// the release by writing the manifest. Readers that list or open
// manifests never observe a half-uploaded release.
func (p *Pipeline) Publish(ctx context.Context, store blobstore.BlobStore, name, datasetPath, codebookPath string) (*Manifest, error) {
	start := time.Now()
	m, err := p.publish(ctx, store, name, datasetPath, codebookPath)

	p.opts.metricsCollector.RecordPublish(time.Since(start), err)
	p.opts.logger.LogPublish(ctx, name, err)
	return m, err
}

func (p *Pipeline) publish(ctx context.Context, store blobstore.BlobStore, name, datasetPath, codebookPath string) (*Manifest, error) {
	// Validate the container before uploading a single byte.
	r, err := dataset.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	m := &Manifest{
		Name:        name,
		Dataset:     name + "/" + datasetBlobName,
		Codec:       p.opts.codec.Name(),
		NumBags:     r.Len(),
		K:           r.K(),
		Compression: r.Compression().String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.Close(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(datasetPath)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, m.Dataset, data); err != nil {
		return nil, fmt.Errorf("upload dataset: %w", err)
	}

	if codebookPath != "" {
		cbData, err := os.ReadFile(codebookPath)
		if err != nil {
			return nil, err
		}
		m.Codebook = name + "/" + codebookBlobName
		if err := store.Put(ctx, m.Codebook, cbData); err != nil {
			return nil, fmt.Errorf("upload codebook: %w", err)
		}
	}

	encoded, err := p.opts.codec.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := store.Put(ctx, name+"/"+manifestBlobName, encoded); err != nil {
		return nil, fmt.Errorf("commit manifest: %w", err)
	}

	return m, nil
}

// OpenManifest reads the manifest of a published release. Returns
// blobstore.ErrNotFound when the release does not exist or is not yet
// committed.
func OpenManifest(ctx context.Context, store blobstore.BlobStore, name string) (*Manifest, error) {
	blob, err := store.Open(ctx, name+"/"+manifestBlobName)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}

	// Both built-in codecs emit JSON, so the default decodes manifests
	// written by either.
	var m Manifest
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
