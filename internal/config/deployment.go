package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Deployment is the per-network binding record: the addresses the
// service components answer for, plus the privileged accounts. The UI
// and scripts read the same file to bind to a running deployment.
type Deployment struct {
	Network    string `json:"network"`
	ChainID    int64  `json:"chain_id"`
	Credential string `json:"credential"`
	Ledger     string `json:"ledger"`
	Gate       string `json:"gate"`
	Gateway    string `json:"gateway"`
	Stablecoin string `json:"stablecoin"`
	Admin      string `json:"admin"`
	Owner      string `json:"owner"`
	Treasury   string `json:"treasury"`
}

// DeploymentFile maps network name to its deployment record.
type DeploymentFile map[string]Deployment

// LoadDeployment reads the deployment file and returns the record for
// the given network.
func LoadDeployment(path, network string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment file: %w", err)
	}

	var file DeploymentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse deployment file: %w", err)
	}

	dep, ok := file[network]
	if !ok {
		return nil, fmt.Errorf("no deployment record for network %q", network)
	}
	return &dep, nil
}

// SaveDeployment writes or updates the record for one network,
// preserving records of other networks already in the file.
func SaveDeployment(path string, dep *Deployment) error {
	file := DeploymentFile{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse existing deployment file: %w", err)
		}
	}

	file[dep.Network] = *dep

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
