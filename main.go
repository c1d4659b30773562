package main

import (
	"regit/config"
	"regit/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("regit.main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading chaincode configuration: " + err.Error())
	}
	if err := flogging.Global.ActivateSpec(cfg.LogSpec); err != nil {
		panic("Error activating log spec '" + cfg.LogSpec + "': " + err.Error())
	}

	cc, err := contractapi.NewChaincode(&contract.RegitSmartContract{})
	if err != nil {
		panic("Error creating RegitSmartContract: " + err.Error())
	}

	if !cfg.ExternalService() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := cfg.TLSProperties()
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID(),
		Address:  cfg.ServerAddress,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode service '%s' on %s (TLS disabled: %t)", cfg.CCID(), cfg.ServerAddress, cfg.TLSDisabled)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode service: " + err.Error())
	}
}
