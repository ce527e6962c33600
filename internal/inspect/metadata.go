package inspect

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"
)

// stockMetadataKeywords identify stock agencies in credit and copyright
// fields. Agency files carry these even when the URL and filename are clean.
var stockMetadataKeywords = []string{
	"shutterstock",
	"gettyimages",
	"getty images",
	"istockphoto",
	"istock",
	"alamy",
	"depositphotos",
	"dreamstime",
	"123rf",
	"adobestock",
	"adobe stock",
	"bigstockphoto",
	"wireimage",
	"filmmagic",
	"pond5",
	"masterfile",
	"superstock",
	"agefotostock",
}

var stockTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Copyright": true,
		"Artist":    true,
	},
	imagemeta.IPTC: {
		"CopyrightNotice": true,
		"Credit":          true,
		"Byline":          true,
		"Source":          true,
	},
	imagemeta.XMP: {
		"Rights":  true,
		"Creator": true,
		"Credit":  true,
		"Source":  true,
	},
}

// metaFormats maps decoded image formats to the container imagemeta parses.
// imagemeta does not sniff containers itself.
var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"webp": imagemeta.WebP,
}

// stockAgency returns the agency keyword found in the image's EXIF, IPTC or
// XMP credit fields. Unparseable metadata is treated as absent.
func stockAgency(data []byte, format string) (string, bool) {
	imgFormat, ok := metaFormats[format]
	if !ok || len(data) == 0 {
		return "", false
	}

	// Decode errors are ignored; a credit seen before the error still counts.
	var agency string
	_, _ = imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imgFormat,
		Sources:     imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return stockTags[ti.Source][ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			lower := strings.ToLower(tagString(ti.Value))
			for _, kw := range stockMetadataKeywords {
				if strings.Contains(lower, kw) {
					agency = kw
					return imagemeta.ErrStopWalking
				}
			}
			return nil
		},
	})
	return agency, agency != ""
}

// tagString flattens a tag value; XMP lists yield their first element.
func tagString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
