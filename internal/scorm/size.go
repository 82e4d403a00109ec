package scorm

import (
	"encoding/json"

	"github.com/courseforge/courseforge/internal/course"
)

// Fixed per-artifact overheads used by the size estimator. The base covers
// the manifest, entry document and static runtime scripts; assets are not
// inspected on disk at estimation time, so each gets a flat allowance.
const (
	baseStructureBytes = 15000
	videoRefBytes      = 500
	perAssetBytes      = 50000
)

// SizeEstimate breaks down the estimated size of a generated package.
type SizeEstimate struct {
	BaseBytes     int64 `json:"baseBytes"`
	ContentBytes  int64 `json:"contentBytes"`
	AssetBytes    int64 `json:"assetBytes"`
	TotalBytes    int64 `json:"totalBytes"`
	TemplateCount int   `json:"templateCount"`
	AssetCount    int   `json:"assetCount"`
}

// EstimateSize estimates the serialized package size for a course before
// any artifact is rendered, so an oversized course can be rejected cheaply.
func EstimateSize(c *course.Course) SizeEstimate {
	est := SizeEstimate{
		BaseBytes:     baseStructureBytes,
		TemplateCount: len(c.Templates),
		AssetCount:    len(c.Assets),
	}

	for i := range c.Templates {
		tpl := &c.Templates[i]
		switch tpl.Kind {
		case course.KindContentVideo:
			est.ContentBytes += videoRefBytes
		case course.KindMCQ:
			// MCQ payloads appear both in the data blob and in the
			// rendered interaction markup.
			est.ContentBytes += dataLen(tpl.Data) * 2
		default:
			est.ContentBytes += dataLen(tpl.Data)
		}
	}

	for i := range c.Assets {
		if c.Assets[i].Size > 0 {
			est.AssetBytes += c.Assets[i].Size
		} else {
			est.AssetBytes += perAssetBytes
		}
	}

	est.TotalBytes = est.BaseBytes + est.ContentBytes + est.AssetBytes
	return est
}

func dataLen(d course.TemplateData) int64 {
	buf, err := json.Marshal(d)
	if err != nil {
		return 0
	}
	return int64(len(buf))
}
