package roster

import (
	"os"

	json "github.com/goccy/go-json"

	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/roster/interfaces"
	"infcheck/internal/services"
)

// FileManager persists the working copy to a compressed snapshot file so
// in-flight edits survive a daemon restart.
type FileManager struct {
	working    services.WorkingCopyServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, working services.WorkingCopyServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		working:    working,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.working.Snapshot()
	if snapshot == nil {
		// Nothing loaded yet, nothing worth persisting.
		return nil
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot models.WorkingSnapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot file unreadable, starting from the remote roster")
		return err
	}

	f.working.Restore(&snapshot)
	f.logger.Infof(providers.TypeApp, "Restored working copy: %d row(s), version %d", len(snapshot.Rows), snapshot.Version)
	return nil
}
