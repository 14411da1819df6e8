package audiofile

import (
	"fmt"
	"os"
)

// WriteFile encodes a as a WAV file at path, replacing any existing file.
func WriteFile(path string, a *Audio, q Quantizer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	err = EncodeWAV(file, a, q)
	if err != nil {
		file.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	return file.Close()
}
