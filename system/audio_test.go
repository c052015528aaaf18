// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aplayOutput = `**** List of PLAYBACK Hardware Devices ****
card 0: AMLAUGESOUND [AML-AUGESOUND], device 0: TDM-A-dummy-alsaPORT-pcm multicodec-0 []
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 0: AMLAUGESOUND [AML-AUGESOUND], device 2: SPDIF-dummy-alsaPORT-spdif dummy-2 []
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 1: Device [USB Audio Device], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
`

const arecordOutput = `**** List of CAPTURE Hardware Devices ****
card 0: AMLAUGESOUND [AML-AUGESOUND], device 2: TDM-C-dummy-alsaPORT-hdmirx dummy-2 []
  Subdevices: 1/1
`

func TestAudioManager_Devices(t *testing.T) {
	cmd := NewMockCommandRunner()
	cmd.SetOutput("aplay", []string{"-l"}, []byte(aplayOutput))
	cmd.SetOutput("arecord", []string{"-l"}, []byte(arecordOutput))

	devices := NewAudioManager(cmd).Devices(context.Background())

	require.Len(t, devices.Playback, 3)
	assert.Equal(t, "hw:0,0", devices.Playback[0].Address)
	assert.Equal(t, "AMLAUGESOUND", devices.Playback[0].Name)
	assert.Contains(t, devices.Playback[0].Description, "TDM-A-dummy-alsaPORT-pcm")
	assert.Equal(t, "hw:0,2", devices.Playback[1].Address)
	assert.Equal(t, "hw:1,0", devices.Playback[2].Address)
	assert.Equal(t, "Device", devices.Playback[2].Name)

	require.Len(t, devices.Capture, 1)
	assert.Equal(t, "hw:0,2", devices.Capture[0].Address)
}

func TestAudioManager_ToolMissing(t *testing.T) {
	cmd := NewMockCommandRunner()
	cmd.SetOutput("aplay", []string{"-l"}, []byte(aplayOutput))
	cmd.SetError("arecord", []string{"-l"}, errors.New("executable file not found"))

	devices := NewAudioManager(cmd).Devices(context.Background())

	assert.Len(t, devices.Playback, 3)
	assert.NotNil(t, devices.Capture)
	assert.Empty(t, devices.Capture)
}

func TestParseAudioDevices_NoCards(t *testing.T) {
	devices := parseAudioDevices("aplay: device_list:274: no soundcards found...\n")
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}
