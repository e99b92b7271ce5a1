package config

import (
	"fmt"
	"os"
)

func Template() string {
	return configTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}

const configTemplate = `[device]
# exactly one of port and address selects the attachment
port = "/dev/ttyUSB0"
baud = 115200
# address = "10.0.0.30:2000"
# revision pins the protocol catalog; leave unset to probe the device
# revision = "1801"

[session]
read_timeout = "5s"
write_timeout = "2s"
idle_window = "300ms"
max_response_kib = 64

[monitor]
interval = "30s"
# counts per minute per microsievert/hour, M4011 tube
tube_factor = 153.8

[mqtt]
# broker = "tcp://127.0.0.1:1883"
topic = "sensors/geiger"
client_id = "geigermon"
qos = 1

[http]
addr = ":9090"
`
