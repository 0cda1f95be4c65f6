// Package config decodes typed manager configurations from YAML or JSON.
//
// Example:
//
//	type PoolConfig struct {
//	    Size    int           `yaml:"size" json:"size"`
//	    Timeout time.Duration `yaml:"timeout" json:"timeout"`
//	}
//
//	cfg, err := config.FromFile[PoolConfig]("pool.yaml")
//	if err != nil {
//	    return err
//	}
//	pool, err := singleton.Create(newPool, cfg)
package config
