package settings

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/avast/retry-go"
	version "github.com/mcuadros/go-version"
)

// Check if an update is available
func CheckForUpdates() (bool, error) {

	localVer := EMUHUB_VERSION

	var body []byte
	err := retry.Do(
		func() error {
			res, err := http.Get(EMUHUB_VERSION_URL)
			if err != nil {
				return err
			}
			defer res.Body.Close()

			body, err = io.ReadAll(res.Body)
			return err
		},
		retry.Attempts(3),
	)
	if err != nil {
		return false, err
	}

	remoteValues := map[string]string{}
	err = json.Unmarshal(body, &remoteValues)
	if err != nil {
		return false, err
	}

	remoteVer := remoteValues["version"]

	if version.CompareSimple(remoteVer, localVer) > 0 {
		return true, nil
	}

	return false, nil
}
