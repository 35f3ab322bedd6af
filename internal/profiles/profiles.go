package profiles

import "runtime"

// Profile is one ordered candidate of encoder settings for segment
// extraction. Hardware profiles come first in a resolved list; the
// software profile is always present as the final fallback.
type Profile struct {
	Name     string
	Hardware bool
	// VideoArgs are passed to ffmpeg verbatim between input and output.
	VideoArgs []string
}

var software = Profile{
	Name: "libx264",
	VideoArgs: []string{
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "20",
		"-pix_fmt", "yuv420p",
	},
}

// Resolve builds the ordered candidate list for the current host, once at
// startup. Extraction tries each profile in order and falls through to
// the next on failure.
func Resolve() []Profile {
	return resolveFor(runtime.GOOS)
}

func resolveFor(goos string) []Profile {
	switch goos {
	case "darwin":
		return []Profile{
			{
				Name:     "h264_videotoolbox",
				Hardware: true,
				VideoArgs: []string{
					"-c:v", "h264_videotoolbox",
					"-b:v", "6M",
					"-pix_fmt", "yuv420p",
				},
			},
			software,
		}
	default:
		return []Profile{software}
	}
}
