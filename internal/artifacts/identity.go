package artifacts

import (
	"crypto/md5"
	"fmt"
)

// Key derives the stable cache identity for an asset from its logical
// location. Hashing the "folder/filename" pair keeps cache names fixed
// length, filesystem safe, and independent of filename encoding quirks.
func Key(folder, filename string) string {
	sum := md5.Sum([]byte(folder + "/" + filename))
	return fmt.Sprintf("%x", sum)
}
