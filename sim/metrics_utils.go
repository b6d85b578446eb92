// sim/metrics_utils.go
package sim

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// SaveResults writes r to fileName in the given output format, truncating any existing file.
func (r *Results) SaveResults(fileName, format string) (err error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating results file %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing results file %s: %w", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	if err := r.Write(writer, format); err != nil {
		return fmt.Errorf("writing results to %s: %w", fileName, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing results to %s: %w", fileName, err)
	}

	logrus.Debugf("Results written to '%s'", fileName)
	return nil
}
