// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// textConverter renders a decoded value as human readable text.
type textConverter func(v any) string

var exifStringValues = map[string]map[uint32]string{
	"ExposureProgram": {
		0: "Undefined",
		1: "Manual",
		2: "Normal program",
		3: "Aperture priority",
		4: "Shutter priority",
		5: "Creative program",
		6: "Action program",
		7: "Portrait mode",
		8: "Landscape mode",
	},
	"MeteringMode": {
		0:   "Unknown",
		1:   "Average",
		2:   "CenterWeightedAverage",
		3:   "Spot",
		4:   "MultiSpot",
		5:   "Pattern",
		6:   "Partial",
		255: "Other",
	},
	"LightSource": {
		0:   "Unknown",
		1:   "Daylight",
		2:   "Fluorescent",
		3:   "Tungsten (incandescent light)",
		4:   "Flash",
		9:   "Fine weather",
		10:  "Cloudy weather",
		11:  "Shade",
		12:  "Daylight fluorescent (D 5700 - 7100K)",
		13:  "Day white fluorescent (N 4600 - 5400K)",
		14:  "Cool white fluorescent (W 3900 - 4500K)",
		15:  "White fluorescent (WW 3200 - 3700K)",
		17:  "Standard light A",
		18:  "Standard light B",
		19:  "Standard light C",
		20:  "D55",
		21:  "D65",
		22:  "D75",
		23:  "D50",
		24:  "ISO studio tungsten",
		255: "Other",
	},
	"Flash": {
		0x0000: "Flash did not fire",
		0x0001: "Flash fired",
		0x0005: "Strobe return light not detected",
		0x0007: "Strobe return light detected",
		0x0009: "Flash fired, compulsory flash mode",
		0x000d: "Flash fired, compulsory flash mode, return light not detected",
		0x000f: "Flash fired, compulsory flash mode, return light detected",
		0x0010: "Flash did not fire, compulsory flash mode",
		0x0018: "Flash did not fire, auto mode",
		0x0019: "Flash fired, auto mode",
		0x001d: "Flash fired, auto mode, return light not detected",
		0x001f: "Flash fired, auto mode, return light detected",
		0x0020: "No flash function",
		0x0041: "Flash fired, red-eye reduction mode",
		0x0045: "Flash fired, red-eye reduction mode, return light not detected",
		0x0047: "Flash fired, red-eye reduction mode, return light detected",
		0x0049: "Flash fired, compulsory flash mode, red-eye reduction mode",
		0x004d: "Flash fired, compulsory flash mode, red-eye reduction mode, return light not detected",
		0x004f: "Flash fired, compulsory flash mode, red-eye reduction mode, return light detected",
		0x0059: "Flash fired, auto mode, red-eye reduction mode",
		0x005d: "Flash fired, auto mode, return light not detected, red-eye reduction mode",
		0x005f: "Flash fired, auto mode, return light detected, red-eye reduction mode",
	},
	"SensingMethod": {
		1: "Undefined",
		2: "One-chip color area sensor",
		3: "Two-chip color area sensor",
		4: "Three-chip color area sensor",
		5: "Color sequential area sensor",
		7: "Trilinear sensor",
		8: "Color sequential linear sensor",
	},
	"SceneCaptureType": {
		0: "Standard",
		1: "Landscape",
		2: "Portrait",
		3: "Night scene",
	},
	"SceneType": {
		1: "Directly photographed",
	},
	"CustomRendered": {
		0: "Normal process",
		1: "Custom process",
	},
	"WhiteBalance": {
		0: "Auto white balance",
		1: "Manual white balance",
	},
	"GainControl": {
		0: "None",
		1: "Low gain up",
		2: "High gain up",
		3: "Low gain down",
		4: "High gain down",
	},
	"Contrast": {
		0: "Normal",
		1: "Soft",
		2: "Hard",
	},
	"Saturation": {
		0: "Normal",
		1: "Low saturation",
		2: "High saturation",
	},
	"Sharpness": {
		0: "Normal",
		1: "Soft",
		2: "Hard",
	},
	"SubjectDistanceRange": {
		0: "Unknown",
		1: "Macro",
		2: "Close view",
		3: "Distant view",
	},
	"FileSource": {
		3: "DSC",
	},
	"ComponentsConfiguration": {
		0: "",
		1: "Y",
		2: "Cb",
		3: "Cr",
		4: "R",
		5: "G",
		6: "B",
	},
	"Orientation": {
		1: "Original",
		2: "Horizontal flip",
		3: "Rotate 180° CCW",
		4: "Vertical flip",
		5: "Vertical flip + Rotate 90° CW",
		6: "Rotate 90° CW",
		7: "Horizontal flip + Rotate 90° CW",
		8: "Rotate 90° CCW",
	},
}

type vc struct{}

var (
	exifConverters       = vc{}
	exifTextConverterMap = map[string]textConverter{
		"ExifVersion":             exifConverters.convertASCIIVersion,
		"FlashpixVersion":         exifConverters.convertASCIIVersion,
		"InteroperabilityVersion": exifConverters.convertASCIIVersion,
		"ComponentsConfiguration": exifConverters.convertComponents,
		"GPSVersionID":            exifConverters.convertDotted,
		"GPSLatitude":             exifConverters.convertDegreesToDecimal,
		"GPSLongitude":            exifConverters.convertDegreesToDecimal,
		"ApertureValue":           exifConverters.convertAPEXToFNumber,
		"MaxApertureValue":        exifConverters.convertAPEXToFNumber,
		"ShutterSpeedValue":       exifConverters.convertAPEXToSeconds,
		"UserComment": func(v any) string {
			return strings.TrimPrefix(printableString(toString(v)), "ASCII")
		},
		"MakerNote": exifConverters.convertBinaryData,
	}
)

// exifText returns the human readable text for the named EXIF tag value.
func exifText(name string, v any) string {
	if v == nil {
		return ""
	}
	if m, ok := exifStringValues[name]; ok && name != "ComponentsConfiguration" {
		if n, ok := toUint32(v); ok {
			if s, ok := m[n]; ok {
				return s
			}
		}
	}
	if convert, ok := exifTextConverterMap[name]; ok {
		return convert(v)
	}
	if b, ok := v.([]byte); ok {
		if isPrintableASCII(b) {
			return string(trimBytesNulls(b))
		}
		return exifConverters.convertBinaryData(b)
	}
	return toString(v)
}

func (vc) bytesOf(v any) []byte {
	switch vv := v.(type) {
	case []byte:
		return vv
	case []any:
		b := make([]byte, 0, len(vv))
		for _, x := range vv {
			n, ok := toUint32(x)
			if !ok || n > math.MaxUint8 {
				return nil
			}
			b = append(b, byte(n))
		}
		return b
	default:
		return nil
	}
}

func (c vc) convertASCIIVersion(v any) string {
	b := c.bytesOf(v)
	if len(b) < 4 {
		return toString(v)
	}
	return string(b[:4])
}

func (c vc) convertComponents(v any) string {
	b := c.bytesOf(v)
	if len(b) < 4 {
		return toString(v)
	}
	names := exifStringValues["ComponentsConfiguration"]
	var sb strings.Builder
	for _, x := range b[:4] {
		sb.WriteString(names[uint32(x)])
	}
	return sb.String()
}

func (c vc) convertDotted(v any) string {
	b := c.bytesOf(v)
	if b == nil {
		return toString(v)
	}
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = strconv.Itoa(int(x))
	}
	return strings.Join(parts, ".")
}

func (vc) convertBinaryData(v any) string {
	b, _ := v.([]byte)
	return fmt.Sprintf("(Binary data %d bytes)", len(b))
}

func (c vc) convertDegreesToDecimal(v any) string {
	d, err := c.toDegrees(v)
	if err != nil {
		return toString(v)
	}
	return strconv.FormatFloat(d, 'f', -1, 64)
}

func (vc) convertAPEXToFNumber(v any) string {
	f := toFloat64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return toString(v)
	}
	return strconv.FormatFloat(math.Round(math.Pow(2, f/2)*10)/10, 'f', -1, 64)
}

func (vc) convertAPEXToSeconds(v any) string {
	f := toFloat64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return toString(v)
	}
	return strconv.FormatFloat(1/math.Pow(2, f), 'g', 6, 64)
}

func (vc) toDegrees(v any) (float64, error) {
	switch v := v.(type) {
	case []any:
		if len(v) != 3 {
			return 0, fmt.Errorf("expected 3 values, got %d", len(v))
		}
		deg := toFloat64(v[0])
		minutes := toFloat64(v[1])
		sec := toFloat64(v[2])
		return deg + minutes/60 + sec/3600, nil
	case float64:
		return v, nil
	case float64Provider:
		return v.Float64(), nil
	default:
		return 0, fmt.Errorf("unsupported degree type %T", v)
	}
}

func isPrintableASCII(b []byte) bool {
	b = trimBytesNulls(b)
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
