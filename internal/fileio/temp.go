package fileio

import "os"

// TempName reserves an empty temp file whose name ends in suffix and returns its path.
// It's the caller's responsibility to clean up the temp file.
func TempName(suffix string) (string, error) {
	fd, err := os.CreateTemp("", "deployctl-*"+suffix)
	if err != nil {
		return "", err
	}

	return fd.Name(), fd.Close()
}
