package utils

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var idGenerator *snowflake.Node

func init() {
	var err error
	idGenerator, err = snowflake.NewNode(1)
	if err != nil {
		fmt.Println(err)
		return
	}
}

// GenerateRunID identifies one export run, ids sort by creation time.
func GenerateRunID() string {
	return idGenerator.Generate().String()
}
