package main

import "yt-clipper/cmd"

func main() {
	cmd.Execute()
}
