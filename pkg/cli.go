package pkg

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/antonvs2/adbkit/pkg/adb"
	"github.com/antonvs2/adbkit/pkg/adb/command/host"
	adbsync "github.com/antonvs2/adbkit/pkg/adb/sync"
	"github.com/antonvs2/adbkit/pkg/adb/tcpusb"
)

var (
	flagHost    string
	flagPort    int
	flagBin     string
	flagVerbose bool
)

func client() *adb.Client {
	return adb.NewClient(&adb.Options{
		Host: flagHost,
		Port: flagPort,
		Bin:  flagBin,
	})
}

// Run 运行adbkit命令行
func Run() error {
	rootCmd := &cobra.Command{
		Use:   "adbkit",
		Short: "A pure Go client for the ADB server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flagHost, "host", "H", "127.0.0.1", "ADB server host")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "P", 5037, "ADB server port")
	rootCmd.PersistentFlags().StringVar(&flagBin, "bin", "adb", "adb binary used to start the server")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		versionCmd(),
		devicesCmd(),
		trackCmd(),
		shellCmd(),
		pushCmd(),
		pullCmd(),
		screencapCmd(),
		bridgeCmd(),
		pubkeyConvertCmd(),
		pubkeyFingerprintCmd(),
	)

	return rootCmd.Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the ADB server version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := client().Version()
			if err != nil {
				return err
			}
			fmt.Println(version)
			return nil
		},
	}
}

func devicesCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Lists connected devices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if long {
				devices, err := client().ListDevicesWithPaths()
				if err != nil {
					return err
				}
				for _, device := range devices {
					fmt.Printf("%s\t%s\t%s\n", device.ID, device.Type, device.Path)
				}
				return nil
			}

			devices, err := client().ListDevices()
			if err != nil {
				return err
			}
			for _, device := range devices {
				fmt.Printf("%s\t%s\n", device.ID, device.Type)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "include device paths")
	return cmd
}

func trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Tracks devices as they come and go.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := client().TrackDevices()
			if err != nil {
				return err
			}

			done := make(chan error, 1)
			tracker.On("add", func(data interface{}) {
				device := data.(host.Device)
				fmt.Printf("add\t%s\t%s\n", device.ID, device.Type)
			})
			tracker.On("change", func(data interface{}) {
				device := data.(host.Device)
				fmt.Printf("change\t%s\t%s\n", device.ID, device.Type)
			})
			tracker.On("remove", func(data interface{}) {
				device := data.(host.Device)
				fmt.Printf("remove\t%s\t%s\n", device.ID, device.Type)
			})
			tracker.On("end", func(interface{}) { done <- nil })
			tracker.On("error", func(data interface{}) { done <- data.(error) })

			return <-done
		},
	}
}

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <serial> <command...>",
		Short: "Runs a shell command on the device.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := client().ShellArgs(args[0], args[1:]...)
			if err != nil {
				return err
			}
			defer stream.Close()

			_, err = io.Copy(os.Stdout, stream)
			return err
		},
	}
}

func pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <serial> <local> <remote>",
		Short: "Pushes a local file to the device.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			transfer, err := client().Push(args[0], args[1], args[2], 0)
			if err != nil {
				return err
			}

			transfer.On("progress", func(data interface{}) {
				logrus.Debugf("pushed %d bytes", data.(adbsync.Progress).BytesTransferred)
			})
			return transfer.Wait()
		},
	}
}

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <serial> <remote> <local>",
		Short: "Pulls a file from the device.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			transfer, err := client().Pull(args[0], args[1])
			if err != nil {
				return err
			}
			defer transfer.Close()

			file, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer file.Close()

			_, err = io.Copy(file, transfer)
			return err
		},
	}
}

func screencapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screencap <serial>",
		Short: "Takes a screenshot and writes the PNG to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := client().Screencap(args[0])
			if err != nil {
				return err
			}
			defer stream.Close()

			_, err = io.Copy(os.Stdout, stream)
			return err
		},
	}
}

func bridgeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "bridge <serial>",
		Short: "Exposes a device to other clients over the ADB wire protocol.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			server := tcpusb.NewServer(
				tcpusb.TransporterFunc(c.OpenService),
				args[0],
				&tcpusb.Options{Logger: logrus.StandardLogger()},
			)

			if err := server.Listen(listen); err != nil {
				return err
			}
			select {}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":6174", "address to listen on")
	return cmd
}

func pubkeyConvertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "pubkey-convert <file>",
		Short: "Converts an ADB-generated public key into PEM format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			key, err := adb.ParsePublicKey(data)
			if err != nil {
				return err
			}

			switch format {
			case "pem":
				pem, err := adb.PublicKeyToPem(key)
				if err != nil {
					return err
				}
				fmt.Print(pem)
			case "openssh":
				fmt.Println(adb.PublicKeyToOpenSSH(key, "adbkey"))
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pem", "format (pem or openssh)")
	return cmd
}

func pubkeyFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey-fingerprint <file>",
		Short: "Outputs the fingerprint of an ADB-generated public key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			key, err := adb.ParsePublicKey(data)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", key.Fingerprint, strings.TrimSpace(key.Comment))
			return nil
		},
	}
}
