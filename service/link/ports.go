package link

import (
	"sort"

	"github.com/juju/errors"
	bugst "go.bug.st/serial"
)

// ListPorts имена последовательных портов, доступных в системе
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, errors.Annotate(err, "получение списка портов")
	}
	sort.Strings(ports)
	return ports, nil
}
