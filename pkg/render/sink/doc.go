// Package sink writes a [render.Scene] in an output format.
//
//   - [RenderSVG]: standalone SVG; [WithInteraction] embeds the click
//     handling that highlights a cluster in the heatmap
//   - [RenderPNG]: raster image drawn with gg
//   - [RenderJSON]: the scene's draw commands
//
// Every sink draws the same commands, so a PNG of a scene composed with a
// selection shows the same highlight the interactive SVG shows after the
// matching click.
package sink
