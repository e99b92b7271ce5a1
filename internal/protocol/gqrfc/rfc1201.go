package gqrfc

import "github.com/cloudchamber-io/geigerctl/internal/protocol"

// ackByte acknowledges write-style commands across every revision.
const ackByte = 0xAA

var keyChoices = map[string]string{"0": "0", "1": "1", "2": "2", "3": "3"}

func onOff(on, off string) map[string]string {
	return map[string]string{"on": on, "off": off}
}

// RFC1201 is the root revision spoken by the classic GMC-2xx and GMC-3xx
// counters. Every later revision extends this table.
var RFC1201 = protocol.MustCommandSet("GQ-RFC1201", rfc1201Commands()...)

func rfc1201Commands() []protocol.Command {
	return []protocol.Command{
		protocol.MustCommand("GETVER", "hardware model and firmware revision",
			protocol.StaticRequest("<GETVER>>"),
			protocol.FixedBytes{N: 14},
			protocol.DecodeTextFields(
				protocol.TextField{Name: "model", Start: 0, End: 7},
				protocol.TextField{Name: "revision", Start: 7, End: 14},
			)),
		protocol.MustCommand("GETSERIAL", "factory serial number",
			protocol.StaticRequest("<GETSERIAL>>"),
			protocol.FixedBytes{N: 7},
			protocol.DecodeHex()),
		protocol.MustCommand("GETCPM", "current counts per minute",
			protocol.StaticRequest("<GETCPM>>"),
			protocol.FixedBytes{N: 2},
			protocol.DecodeUintBE(2)),
		protocol.MustCommand("GETVOLT", "battery voltage in tenths of a volt",
			protocol.StaticRequest("<GETVOLT>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeUintBE(1)),
		protocol.MustCommand("GETCFG", "raw configuration block",
			protocol.StaticRequest("<GETCFG>>"),
			protocol.FixedBytes{N: 256},
			protocol.DecodeRaw()),
		protocol.MustCommand("ECFG", "erase the configuration block",
			protocol.StaticRequest("<ECFG>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("WCFG", "write one configuration byte",
			protocol.BinaryRequest("<WCFG",
				protocol.ArgSpec{Name: "address", Kind: protocol.ArgUint8},
				protocol.ArgSpec{Name: "value", Kind: protocol.ArgUint8},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("CFGUPDATE", "reload configuration from flash",
			protocol.StaticRequest("<CFGUPDATE>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("GETDATETIME", "on-device clock",
			protocol.StaticRequest("<GETDATETIME>>"),
			protocol.FixedBytes{N: 7},
			protocol.DecodeClock(ackByte)),
		protocol.MustCommand("SETDATETIME", "set the on-device clock",
			protocol.BinaryRequest("<SETDATETIME",
				protocol.ArgSpec{Name: "year", Kind: protocol.ArgUint8, Max: 99},
				protocol.ArgSpec{Name: "month", Kind: protocol.ArgUint8, Max: 12},
				protocol.ArgSpec{Name: "day", Kind: protocol.ArgUint8, Max: 31},
				protocol.ArgSpec{Name: "hour", Kind: protocol.ArgUint8, Max: 23},
				protocol.ArgSpec{Name: "minute", Kind: protocol.ArgUint8, Max: 59},
				protocol.ArgSpec{Name: "second", Kind: protocol.ArgUint8, Max: 59},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETDATEYY", "set clock year (offset from 2000)",
			protocol.BinaryRequest("<SETDATEYY",
				protocol.ArgSpec{Name: "year", Kind: protocol.ArgUint8, Max: 99},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETDATEMM", "set clock month",
			protocol.BinaryRequest("<SETDATEMM",
				protocol.ArgSpec{Name: "month", Kind: protocol.ArgUint8, Max: 12},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETDATEDD", "set clock day",
			protocol.BinaryRequest("<SETDATEDD",
				protocol.ArgSpec{Name: "day", Kind: protocol.ArgUint8, Max: 31},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETTIMEHH", "set clock hour",
			protocol.BinaryRequest("<SETTIMEHH",
				protocol.ArgSpec{Name: "hour", Kind: protocol.ArgUint8, Max: 23},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETTIMEMM", "set clock minute",
			protocol.BinaryRequest("<SETTIMEMM",
				protocol.ArgSpec{Name: "minute", Kind: protocol.ArgUint8, Max: 59},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("SETTIMESS", "set clock second",
			protocol.BinaryRequest("<SETTIMESS",
				protocol.ArgSpec{Name: "second", Kind: protocol.ArgUint8, Max: 59},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("POWER", "switch the device on or off",
			protocol.ChoiceRequest("<POWER",
				protocol.ArgSpec{Name: "state", Kind: protocol.ArgChoice, Choices: onOff("ON", "OFF")},
			),
			protocol.FixedBytes{N: 0},
			protocol.DecodeNothing()),
		protocol.MustCommand("REBOOT", "restart the firmware",
			protocol.StaticRequest("<REBOOT>>"),
			protocol.FixedBytes{N: 0},
			protocol.DecodeNothing()),
		protocol.MustCommand("FACTORYRESET", "restore factory defaults",
			protocol.StaticRequest("<FACTORYRESET>>"),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("KEY", "press a front panel key",
			protocol.ChoiceRequest("<KEY",
				protocol.ArgSpec{Name: "key", Kind: protocol.ArgChoice, Choices: keyChoices},
			),
			protocol.FixedBytes{N: 0},
			protocol.DecodeNothing()),
		protocol.MustCommand("SPEAKER", "switch the click speaker on or off",
			protocol.ChoiceRequest("<SPEAKER",
				protocol.ArgSpec{Name: "state", Kind: protocol.ArgChoice, Choices: onOff("1", "0")},
			),
			protocol.FixedBytes{N: 1},
			protocol.DecodeAck(ackByte)),
		protocol.MustCommand("GETGYRO", "gravity sensor axes",
			protocol.StaticRequest("<GETGYRO>>"),
			protocol.FixedBytes{N: 7},
			protocol.DecodeGyro(ackByte)),
		protocol.MustCommand("GETTEMP", "internal temperature in celsius",
			protocol.StaticRequest("<GETTEMP>>"),
			protocol.FixedBytes{N: 4},
			protocol.DecodeTemperature(ackByte)),
		protocol.MustCommand("SPIR", "read a history flash block; returns count bytes, at most 4096 per request",
			protocol.BinaryRequest("<SPIR",
				protocol.ArgSpec{Name: "address", Kind: protocol.ArgUint24},
				protocol.ArgSpec{Name: "count", Kind: protocol.ArgUint16, Max: 4096},
			),
			protocol.UntilIdle{Max: 4608},
			protocol.DecodeRaw()),
	}
}
