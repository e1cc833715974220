package assets

import (
	_ "embed"
)

// Txt2ImgPayload is the default request template for the txt2img endpoint.
// The prompt and the ControlNet image are filled in per request.
//
//go:embed txt2img.json
var Txt2ImgPayload []byte
