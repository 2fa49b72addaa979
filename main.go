package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vx1-service/vx1"
)

var (
	version       = flag.Bool("version", false, "Print version info")
	help          = flag.Bool("help", false, "Print help")
	logLevel      = flag.Int("log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	redisServer   = flag.String("redis_server", "127.0.0.1", "Redis server address")
	redisPort     = flag.Int("redis_port", 6379, "Redis server port")
	canDevice     = flag.String("can_device", "can0", "CAN device name, or serial port for slcan")
	canDriver     = flag.String("can_driver", "brutella", "CAN driver (brutella, einride or slcan)")
	serialBaud    = flag.Int("serial_baud", 115200, "Serial baud rate for slcan adapters")
	sourceAddress = flag.Int("source_address", int(vx1.DefaultSourceAddress), "J1939 source address for display frames")
	fsmOracle     = flag.Bool("fsm_oracle", false, "Use the first-node flag from the BMS service to decide mastership")
)

const (
	ProjectName    = "vx1-service"
	ProjectVersion = "1.0.0"
)

func printVersion() {
	fmt.Printf("%s v%s\n", ProjectName, ProjectVersion)
}

func printHelp() {
	printVersion()
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if *version {
		printVersion()
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	if *logLevel < 0 || *logLevel > 4 {
		log.Fatalf("invalid log level %d", *logLevel)
	}

	driver := CANDriver(*canDriver)
	switch driver {
	case CANDriverBrutella, CANDriverEinride, CANDriverSLCAN:
		log.Printf("Selected CAN driver: %s", driver)
	default:
		log.Fatalf("invalid CAN driver: %s (must be 'brutella', 'einride' or 'slcan')", *canDriver)
	}

	if *sourceAddress < 0 || *sourceAddress > 0xFD {
		log.Fatalf("invalid source address %d", *sourceAddress)
	}

	opts := &Options{
		LogLevel:        LogLevel(*logLevel),
		RedisServerAddr: *redisServer,
		RedisServerPort: uint16(*redisPort),
		CANDevice:       *canDevice,
		CANDriver:       driver,
		SerialBaud:      *serialBaud,
		SourceAddress:   uint8(*sourceAddress),
		FSMOracle:       *fsmOracle,
	}

	app, err := NewVX1App(opts)
	if err != nil {
		log.Fatalf("failed to create vx1 app: %v", err)
	}
	defer app.Destroy()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
}
