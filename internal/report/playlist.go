package report

import (
	"fmt"
	"path/filepath"

	"github.com/grafov/m3u8"

	"vodbench/internal/model"
	"vodbench/internal/util"
	"vodbench/internal/util/media"
)

// PlaylistFiles are the paths written by WritePlaylists.
type PlaylistFiles struct {
	Master string
	Media  []string
}

// MediaPlaylist renders a configuration's decided plan as a VOD media playlist.
// Each entry points at the segment's encode at its chosen bitrate.
func MediaPlaylist(res model.ConfigResult) (*m3u8.MediaPlaylist, error) {
	n := uint(len(res.Decisions))
	if n == 0 {
		return nil, fmt.Errorf("%s: no decisions", res.Configuration.ID())
	}
	p, err := m3u8.NewMediaPlaylist(0, n)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Decisions {
		uri := media.CandidateBasename(d.Segment, res.Configuration, d.ChosenBitrateKbps)
		title := fmt.Sprintf("%dkbps q=%.2f", d.ChosenBitrateKbps, d.EstimatedQuality)
		if err := p.Append(uri, d.Segment.Duration, title); err != nil {
			return nil, fmt.Errorf("%s: append segment %d: %w", res.Configuration.ID(), d.Segment.Index, err)
		}
	}
	p.MediaType = m3u8.VOD
	p.Close()
	return p, nil
}

// MasterPlaylist lists every successful configuration as a variant stream
// whose bandwidth is its duration-weighted mean bitrate.
func MasterPlaylist(r Report) (*m3u8.MasterPlaylist, error) {
	master := m3u8.NewMasterPlaylist()
	for _, res := range r.Results {
		if !res.OK() || len(res.Decisions) == 0 {
			continue
		}
		chunk, err := MediaPlaylist(res)
		if err != nil {
			return nil, err
		}
		cfg := res.Configuration
		master.Append(media.PlaylistBasename(cfg), chunk, m3u8.VariantParams{
			Bandwidth:  uint32(MeanKbps(res) * 1000),
			Resolution: resolution(r.Source.Width, r.Source.Height, cfg.Height),
			Codecs:     codecTag(cfg.Variant.Codec),
			Name:       cfg.ID(),
		})
	}
	if len(master.Variants) == 0 {
		return nil, fmt.Errorf("no successful configuration to list")
	}
	return master, nil
}

// WritePlaylists writes each media playlist and the master playlist into dir.
func WritePlaylists(dir string, r Report) (PlaylistFiles, error) {
	var out PlaylistFiles
	if err := util.EnsureDir(dir); err != nil {
		return out, err
	}
	for _, res := range r.Results {
		if !res.OK() || len(res.Decisions) == 0 {
			continue
		}
		p, err := MediaPlaylist(res)
		if err != nil {
			return out, err
		}
		path := filepath.Join(dir, media.PlaylistBasename(res.Configuration))
		if err := util.WriteFileAtomic(path, p.Encode().Bytes()); err != nil {
			return out, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		out.Media = append(out.Media, path)
	}
	if len(out.Media) == 0 {
		return out, nil
	}

	master, err := MasterPlaylist(r)
	if err != nil {
		return out, err
	}
	out.Master = filepath.Join(dir, "master.m3u8")
	if err := util.WriteFileAtomic(out.Master, master.Encode().Bytes()); err != nil {
		return out, fmt.Errorf("write master playlist: %w", err)
	}
	return out, nil
}

// resolution scales the source aspect to height, rounded to an even width.
func resolution(srcW, srcH, height int) string {
	if srcW <= 0 || srcH <= 0 || height <= 0 {
		return ""
	}
	w := (srcW*height/srcH + 1) &^ 1
	return fmt.Sprintf("%dx%d", w, height)
}

func codecTag(c model.Codec) string {
	switch c {
	case model.CodecH264:
		return "avc1.640028"
	case model.CodecHEVC:
		return "hvc1.1.6.L120.90"
	case model.CodecAV1:
		return "av01.0.08M.08"
	}
	return ""
}
