package cli

import (
	"fmt"

	minioclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/colorbag"
	"github.com/hupe1980/colorbag/blobstore"
	miniostore "github.com/hupe1980/colorbag/blobstore/minio"
)

func newPublishCmd() *cobra.Command {
	var (
		codebookPath string
		localDir     string
		endpoint     string
		accessKey    string
		secretKey    string
		bucket       string
		prefix       string
		secure       bool
	)

	cmd := &cobra.Command{
		Use:   "publish <name> <dataset.cbds>",
		Short: "Publish a dataset to a blob store",
		Long: `Publish uploads a dataset container (and optionally its vocabulary)
to a blob store under the given release name. The release manifest is
written last, so consumers never observe a half-uploaded release.

The target is either a local directory (--dir) or an S3-compatible
object store (--endpoint and --bucket).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store blobstore.BlobStore
			switch {
			case localDir != "":
				store = blobstore.NewLocalStore(localDir)
			case endpoint != "":
				client, err := minioclient.New(endpoint, &minioclient.Options{
					Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
					Secure: secure,
				})
				if err != nil {
					return fmt.Errorf("connect to %s: %w", endpoint, err)
				}
				store = miniostore.NewStore(client, bucket, prefix)
			default:
				return fmt.Errorf("either --dir or --endpoint is required")
			}

			p := colorbag.New()
			m, err := p.Publish(cmd.Context(), store, args[0], args[1], codebookPath)
			if err != nil {
				return err
			}

			fmt.Printf("published %s: %d bags (k=%d, %s)\n", m.Name, m.NumBags, m.K, m.Compression)
			return nil
		},
	}

	cmd.Flags().StringVar(&codebookPath, "codebook", "", "also publish this saved vocabulary")
	cmd.Flags().StringVar(&localDir, "dir", "", "publish into a local directory")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint (host:port)")
	cmd.Flags().StringVar(&accessKey, "access-key", "", "object store access key")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "object store secret key")
	cmd.Flags().StringVar(&bucket, "bucket", "", "object store bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix inside the bucket")
	cmd.Flags().BoolVar(&secure, "secure", false, "use TLS for the object store connection")

	return cmd
}
