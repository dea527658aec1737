package admission

import (
	"encoding/json"
	"io"
	"os"
)

// LoadWordListsJSON reads the filter word lists for the canonical chain
// from a JSON file of named string lists, e.g.:
//
//	{"user-bot-names": ["nano", ...], "offensive-usernames": [...]}
//
// Unknown list names are ignored so one file can serve multiple tools.
func LoadWordListsJSON(p string, opts *ChainOpts) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var lists map[string][]string
	if err := json.Unmarshal(raw, &lists); err != nil {
		return err
	}

	opts.UserBotNames = append(opts.UserBotNames, lists["user-bot-names"]...)
	opts.UserBotNamesFullMatch = append(opts.UserBotNamesFullMatch, lists["user-bot-names-full-match"]...)
	opts.OffensiveUsernames = append(opts.OffensiveUsernames, lists["offensive-usernames"]...)
	opts.SexualUsernames = append(opts.SexualUsernames, lists["sexual-usernames"]...)
	return nil
}
