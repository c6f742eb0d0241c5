// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
)

// MasterKeyFile is the name of the encrypted master key in a data directory.
const MasterKeyFile = "master.key"

// ErrUnencryptedData is returned when a data directory holds a master key
// but no passphrase was given.
var ErrUnencryptedData = errors.New("master key exists but no passphrase was given")

// OpenStorage returns a compressed storage rooted at dataDir. With a
// passphrase, files are encrypted with the master key of the directory,
// which is created on first use.
func OpenStorage(dataDir, passphrase string) (*storage.Storage, error) {
	keyFile := filepath.Join(dataDir, MasterKeyFile)
	var masterKey crypto.MasterKey
	if passphrase != "" {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, err
		}
		var err error
		masterKey, err = crypto.ReadMasterKey([]byte(passphrase), keyFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Println("Initializing new master encryption key...")
			if masterKey, err = crypto.CreateMasterKey(); err != nil {
				return nil, fmt.Errorf("failed to create master key: %w", err)
			}
			if err := masterKey.Save([]byte(passphrase), keyFile); err != nil {
				return nil, fmt.Errorf("failed to save master key: %w", err)
			}
		case err != nil:
			return nil, fmt.Errorf("failed to read master key: %w", err)
		default:
			log.Println("Loaded master encryption key.")
		}
	} else {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s: %w", keyFile, ErrUnencryptedData)
		}
		log.Println("Warning: No master key passphrase provided. Data will be stored UNENCRYPTED.")
	}

	s := storage.New(dataDir, masterKey)
	s.EnableCompression(true)
	return s, nil
}
