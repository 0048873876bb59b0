package submit

import (
	"fmt"
	"strings"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/manifest"
)

// InputURI resolves the mezzanine location inside the input bucket. Mezzanine
// paths are stored relative to the bucket root.
func InputURI(bucket string, m *manifest.Manifest) string {
	return fmt.Sprintf("s3://%s/%s", bucket, strings.TrimPrefix(m.Mezzanine.FilePath, "/"))
}

// OutputPrefix resolves the destination prefix for an episode's renditions.
// Packaging subpaths (hls/, dash/) are appended by the job builder.
func OutputPrefix(bucket string, m *manifest.Manifest) string {
	return fmt.Sprintf("s3://%s/%s/%s/%s", bucket, m.Episode.SeriesID, strings.ToLower(m.Episode.Code()), m.ManifestID)
}
