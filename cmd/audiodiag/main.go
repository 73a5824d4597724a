package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gordonklaus/portaudio"
	"github.com/liuscraft/tonegen/internal/config"
)

func main() {
	checkRate := flag.Int("sample-rate", config.FixedSampleRate, "Sample rate the generated tones use")
	flag.Parse()

	fmt.Println("=== PortAudio Output Device Diagnostics ===")
	fmt.Println()

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize PortAudio: %v\n", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	hostAPIs, err := portaudio.HostApis()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get host APIs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d Host API(s):\n", len(hostAPIs))
	for i, api := range hostAPIs {
		fmt.Printf("  [%d] %s (devices: %d)\n", i, api.Name, len(api.Devices))
	}
	fmt.Println()

	defaultOutput, err := portaudio.DefaultOutputDevice()
	if err != nil {
		fmt.Printf("Default Output Device: (error: %v)\n", err)
	} else {
		fmt.Printf("Default Output Device: %s\n", defaultOutput.Name)
	}
	fmt.Println()

	devices, err := portaudio.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get devices: %v\n", err)
		os.Exit(1)
	}

	outputs := 0
	for i, dev := range devices {
		if dev.MaxOutputChannels == 0 {
			continue
		}
		outputs++

		marker := ""
		if defaultOutput != nil && dev.Name == defaultOutput.Name {
			marker = " [DEFAULT OUTPUT]"
		}
		if isLikelyBluetooth(dev.Name) {
			marker += " (Bluetooth?)"
		}

		fmt.Printf("[%d] %s%s\n", i, dev.Name, marker)
		fmt.Printf("    Max Output Channels: %d\n", dev.MaxOutputChannels)
		fmt.Printf("    Default Sample Rate: %.0f Hz\n", dev.DefaultSampleRate)
		fmt.Printf("    Output Latency: Low=%.1fms, High=%.1fms\n",
			dev.DefaultLowOutputLatency.Seconds()*1000,
			dev.DefaultHighOutputLatency.Seconds()*1000)

		if err := portaudio.IsFormatSupported(outputParams(dev, *checkRate), make([]int16, 1024)); err != nil {
			fmt.Printf("    ⚠️  %d Hz mono int16 not supported (%v), playback will resample to %.0f Hz\n",
				*checkRate, err, dev.DefaultSampleRate)
		}
		fmt.Println()
	}
	fmt.Printf("=== %d output device(s) ===\n\n", outputs)

	if defaultOutput != nil && defaultOutput.MaxOutputChannels > 0 {
		highLatency := defaultOutput.DefaultHighOutputLatency.Seconds()*1000 > 50 && isLikelyBluetooth(defaultOutput.Name)

		fmt.Println("=== Recommended playback config ===")
		fmt.Println()
		fmt.Printf("Add this to your %s:\n\n", config.DefaultPath)
		fmt.Println("\"playback\": {")
		fmt.Println("    \"enable\": true,")
		fmt.Printf("    \"device_name\": %q,\n", defaultOutput.Name)
		fmt.Printf("    \"high_latency\": %v,\n", highLatency)
		fmt.Println("    \"frames_per_buffer\": 1024")
		fmt.Println("}")
	}
}

func outputParams(dev *portaudio.DeviceInfo, sampleRate int) portaudio.StreamParameters {
	return portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: 1024,
	}
}

func isLikelyBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range []string{"bluetooth", "airpods", "buds", "wireless", "headset"} {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
