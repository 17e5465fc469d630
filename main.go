package main

import "github.com/satyapradip/employee-task-management/cmd"

func main() {
	cmd.Execute()
}
