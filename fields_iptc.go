// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	_ "embed" // needed for the embedded IPTC fields JSON
	"encoding/json"
	"strconv"
)

// Source: https://iptc.org/std/IIM/4.1/specification/IIMV4.1.pdf
//
//go:embed iptc_fields.json
var iptcFieldsJSON []byte

const (
	iptcRecordEnvelope    = 1
	iptcRecordApplication = 2

	iptcCodedCharacterSet = 90
)

type iptcFormat string

const (
	iptcFormatString iptcFormat = "string"
	iptcFormatShort  iptcFormat = "short"
	iptcFormatBinary iptcFormat = "binary"
)

type iptcField struct {
	Record     uint8
	ID         uint8
	Name       string
	Format     iptcFormat
	Repeatable bool
	Aliases    []string
}

var (
	iptcRecordFields = map[uint8]map[uint8]iptcField{}

	// DictionaryIPTC covers the IPTC application record (record 2).
	DictionaryIPTC *Dictionary
)

func getIptcRecordFieldDef(record, id uint8) (iptcField, bool) {
	recordFields, ok := iptcRecordFields[record]
	if !ok {
		return iptcField{}, false
	}
	field, ok := recordFields[id]
	return field, ok
}

func init() {
	var fields []struct {
		Record     string   `json:"record"`
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Format     string   `json:"format"`
		Repeatable string   `json:"repeatable"`
		Aliases    []string `json:"aliases"`
	}
	if err := json.Unmarshal(iptcFieldsJSON, &fields); err != nil {
		panic(err)
	}

	toUint8 := func(s string) uint8 {
		i, err := strconv.Atoi(s)
		if err != nil {
			panic(err)
		}
		return uint8(i)
	}

	names := map[uint16]string{}
	aliases := map[string]uint16{}

	for _, f := range fields {
		field := iptcField{
			Record:     toUint8(f.Record),
			ID:         toUint8(f.ID),
			Name:       f.Name,
			Format:     iptcFormat(f.Format),
			Repeatable: f.Repeatable == "true",
			Aliases:    f.Aliases,
		}
		recordFields, ok := iptcRecordFields[field.Record]
		if !ok {
			recordFields = map[uint8]iptcField{}
			iptcRecordFields[field.Record] = recordFields
		}
		recordFields[field.ID] = field

		if field.Record != iptcRecordApplication {
			continue
		}
		names[uint16(field.ID)] = field.Name
		for _, alias := range field.Aliases {
			aliases[alias] = uint16(field.ID)
		}
	}

	DictionaryIPTC = newDictionary("IPTCApplication", names, aliases)
}
