package main

import "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/cmd"

func main() {
	cmd.Execute()
}
