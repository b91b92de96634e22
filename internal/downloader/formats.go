package downloader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// selectFormat picks the best format for mode. Video mode takes progressive
// (audio+video) formats, highest resolution first, MP4 preferred on ties. Audio
// mode takes audio-only formats, highest bitrate first, M4A preferred on ties.
func selectFormat(formats youtube.FormatList, mode Mode) (*youtube.Format, error) {
	candidates := make([]*youtube.Format, 0, len(formats))
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		hasVideo := f.Width != 0 || f.Height != 0
		if mode == ModeAudio && hasVideo {
			continue
		}
		if mode != ModeAudio && (f.Width == 0 || f.Height == 0) {
			continue
		}
		candidates = append(candidates, f)
	}

	if len(candidates) == 0 {
		if mode == ModeAudio {
			return nil, fmt.Errorf("no audio-only formats available")
		}
		return nil, fmt.Errorf("no formats with audio and video available")
	}

	preferred := "video/mp4"
	if mode == ModeAudio {
		preferred = "audio/mp4"
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if mode != ModeAudio {
			if ha, hb := formatHeight(a), formatHeight(b); ha != hb {
				return ha > hb
			}
		} else if ba, bb := bitrate(a), bitrate(b); ba != bb {
			return ba > bb
		}
		pa, pb := strings.HasPrefix(a.MimeType, preferred), strings.HasPrefix(b.MimeType, preferred)
		if pa != pb {
			return pa
		}
		return bitrate(a) > bitrate(b)
	})

	return candidates[0], nil
}

func formatHeight(f *youtube.Format) int {
	if f.Height > 0 {
		return f.Height
	}
	return parseQualityNum(f.QualityLabel)
}

func bitrate(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

func parseQualityNum(quality string) int {
	var num int
	fmt.Sscanf(quality, "%dp", &num)
	return num
}

// renderFilename expands the filename template for video. The extension is
// appended when the template does not produce one.
func renderFilename(template string, video *youtube.Video, title string, format *youtube.Format) string {
	if template == "" {
		template = DefaultTemplate
	}
	ext := fileExt(format.MimeType)

	replacer := strings.NewReplacer(
		"{title}", sanitize(title),
		"{id}", sanitize(video.ID),
		"{author}", sanitize(video.Author),
		"{ext}", ext,
	)
	name := replacer.Replace(template)
	if filepath.Ext(name) == "" {
		name += "." + ext
	}
	return name
}

var invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// sanitize makes name safe as a single path element. Names made only of dots would
// resolve to the output directory or its parent and are replaced with Untitled.
func sanitize(name string) string {
	clean := strings.TrimSpace(invalidChars.ReplaceAllString(name, "-"))
	if strings.Trim(clean, ".") == "" {
		return Untitled
	}
	return clean
}

// fileExt maps a MIME type such as `video/mp4; codecs="avc1"` to a file extension.
func fileExt(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch strings.TrimSpace(mime) {
	case "audio/mp4":
		return "m4a"
	case "video/3gpp":
		return "3gp"
	}
	parts := strings.Split(mime, "/")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "bin"
}

// HumanSize renders n bytes as "~5MB" or "~500KB".
func HumanSize(n int64) string {
	if mb := n / (1024 * 1024); mb > 0 {
		return fmt.Sprintf("~%dMB", mb)
	}
	return fmt.Sprintf("~%dKB", n/1024)
}
