// Package simulator поднимает Modbus TCP устройство в памяти для работы без оборудования.
package simulator

import (
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"

	"github.com/tbrandon/mbserver"
)

// Simulator - ведомое устройство, инициализированное значениями по умолчанию из таблицы точек.
type Simulator struct {
	server *mbserver.Server
	logger *logging.Logger
}

func New(items []*entities.ConfigItem, logger *logging.Logger) *Simulator {
	server := mbserver.NewServer()
	for _, item := range items {
		for i := 0; i < int(item.NumberOfRegisters); i++ {
			address := int(item.StartAddress) + i
			switch item.Type {
			case entities.DigitalOutput:
				server.Coils[address] = byte(item.DefaultValue & 1)
			case entities.DigitalInput:
				server.DiscreteInputs[address] = byte(item.DefaultValue & 1)
			case entities.AnalogOutput:
				server.HoldingRegisters[address] = item.DefaultValue
			case entities.AnalogInput:
				server.InputRegisters[address] = item.DefaultValue
			}
		}
	}
	return &Simulator{server: server, logger: logger.WithPrefix("SIMULATOR")}
}

// Listen начинает принимать соединения на addr (host:port).
func (s *Simulator) Listen(addr string) error {
	if err := s.server.ListenTCP(addr); err != nil {
		return err
	}
	s.logger.Info("Simulated RTU listening", "address", addr)
	return nil
}

func (s *Simulator) Close() {
	s.server.Close()
	s.logger.Info("Simulated RTU stopped")
}
