/*
Package dbconfig is a micropackage that contains storage DB configuration options.
*/
package dbconfig

// Supported DB types.
const (
	BoltDB     = "boltdb"
	LevelDB    = "leveldb"
	InMemoryDB = "inmemory"
)

type (
	// DBConfiguration describes configuration for DB. Supported types:
	// [LevelDB], [BoltDB] or [InMemoryDB] (not recommended for production usage).
	DBConfiguration struct {
		Type           string         `yaml:"Type"`
		LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
		BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
	}
	// LevelDBOptions configuration for LevelDB.
	LevelDBOptions struct {
		DataDirectoryPath string `yaml:"DataDirectoryPath"`
		ReadOnly          bool   `yaml:"ReadOnly"`
		// Sync makes every persisted batch wait for fsync.
		Sync bool `yaml:"Sync"`
		// WriteBufferSize and BlockCacheCapacity are in bytes, zero
		// values keep LevelDB defaults.
		WriteBufferSize        int `yaml:"WriteBufferSize"`
		BlockCacheCapacity     int `yaml:"BlockCacheCapacity"`
		OpenFilesCacheCapacity int `yaml:"OpenFilesCacheCapacity"`
	}
	// BoltDBOptions configuration for BoltDB.
	BoltDBOptions struct {
		FilePath string `yaml:"FilePath"`
		ReadOnly bool   `yaml:"ReadOnly"`
	}
)
